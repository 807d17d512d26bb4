package health

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/serena/serena/internal/platform/auth"
	"github.com/serena/serena/pkg/period"
)

type Handler struct {
	svc *Service
	now func() time.Time
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/health")

	read := g.Group("", auth.RequireRole(auth.RoleCaregiver, auth.RoleViewer))
	read.GET("/summary", h.GetSummary)
	read.GET("/history", h.GetHistory)
	read.GET("/metrics/:type", h.GetMetrics)

	write := g.Group("", auth.RequireRole(auth.RoleCaregiver))
	write.PUT("/history/:id", h.UpdateEvent)
}

func patientParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam("patient_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Se requiere ID de paciente")
	}
	return id, nil
}

func toHTTPError(err error, fallback string) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Msg)
	case errors.Is(err, ErrInvalidMetric):
		return echo.NewHTTPError(http.StatusBadRequest, "Tipo de métrica no válido")
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Paciente no encontrado")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Evento de salud no encontrado")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
}

func (h *Handler) window(c echo.Context, def period.Period) (period.Window, error) {
	_, w, err := period.FromQuery(c, def, h.now())
	if err != nil {
		return period.Window{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return w, nil
}

func (h *Handler) GetSummary(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	w, err := h.window(c, period.Month)
	if err != nil {
		return err
	}
	s, err := h.svc.Summary(c.Request().Context(), patientID, w)
	if err != nil {
		return toHTTPError(err, "Error obteniendo resumen de salud")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) GetHistory(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	w, err := h.window(c, period.Day)
	if err != nil {
		return err
	}
	items, err := h.svc.History(c.Request().Context(), patientID, w, c.QueryParam("category"))
	if err != nil {
		return toHTTPError(err, "Error obteniendo historial de salud")
	}
	return c.JSON(http.StatusOK, HistoryResponse{History: items})
}

func (h *Handler) GetMetrics(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	w, err := h.window(c, period.Month)
	if err != nil {
		return err
	}
	m, err := h.svc.Metrics(c.Request().Context(), patientID, c.Param("type"), w)
	if err != nil {
		return toHTTPError(err, "Error obteniendo métricas de salud")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateEvent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ID de evento inválido")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No se recibieron datos")
	}
	e, err := h.svc.UpdateEvent(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err, "Error actualizando evento de salud")
	}
	return c.JSON(http.StatusOK, e.ToHistoryItem(h.svc.Location()))
}
