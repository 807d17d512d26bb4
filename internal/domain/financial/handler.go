package financial

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/serena/serena/internal/platform/auth"
	"github.com/serena/serena/pkg/pagination"
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
	g := api.Group("/financial")

	read := g.Group("", auth.RequireRole(auth.RoleCaregiver, auth.RoleViewer))
	read.GET("/summary", h.GetSummary)
	read.GET("/expenses/categories", h.GetExpensesByCategory)
	read.GET("/messages-history", h.GetMessagesHistory)

	write := g.Group("", auth.RequireRole(auth.RoleCaregiver))
	write.POST("/transactions", h.RegisterTransaction)
	write.PUT("/transactions/:id", h.UpdateTransaction)
	write.DELETE("/transactions/:id", h.DeleteTransaction)
}

func patientParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.QueryParam("patient_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Se requiere ID de paciente")
	}
	return id, nil
}

func idParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "ID de transacción inválido")
	}
	return id, nil
}

func toHTTPError(err error, fallback string) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Msg)
	case errors.Is(err, ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Paciente no encontrado")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Transacción no encontrada")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
}

func (h *Handler) window(c echo.Context) (period.Period, period.Window, error) {
	p, w, err := period.FromQuery(c, period.Month, h.now())
	if err != nil {
		return "", period.Window{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, w, nil
}

func (h *Handler) GetSummary(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	p, w, err := h.window(c)
	if err != nil {
		return err
	}
	summary, err := h.svc.Summary(c.Request().Context(), patientID, p, w)
	if err != nil {
		return toHTTPError(err, "Error obteniendo resumen financiero")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetExpensesByCategory(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	_, w, err := h.window(c)
	if err != nil {
		return err
	}
	cats, err := h.svc.Categories(c.Request().Context(), patientID, w)
	if err != nil {
		return toHTTPError(err, "Error obteniendo gastos por categoría")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *Handler) GetMessagesHistory(c echo.Context) error {
	patientID, err := patientParam(c)
	if err != nil {
		return err
	}
	_, w, err := h.window(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContextOrAll(c)
	items, total, err := h.svc.History(c.Request().Context(), patientID, w, pg.Limit, pg.Offset)
	if err != nil {
		return toHTTPError(err, "Error obteniendo historial de transacciones")
	}
	pagination.WriteTotal(c, total)
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) RegisterTransaction(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No se recibieron datos")
	}
	t, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err, "Error registrando transacción")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Transacción registrada correctamente",
		"transaction": t,
	})
}

func (h *Handler) UpdateTransaction(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No se recibieron datos")
	}
	t, err := h.svc.Update(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err, "Error actualizando transacción")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTransaction(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return toHTTPError(err, "Error eliminando transacción")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transacción eliminada correctamente",
	})
}
