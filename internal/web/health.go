package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/dashboard"
	"github.com/serena/serena/internal/domain/health"
)

const healthPath = "/health-dashboard"

type healthPage struct {
	State      dashboard.HealthState
	Periods    []option
	Categories []option
	Flash      *flash
	Version    int64
}

func categoryOptions(selected string) []option {
	out := make([]option, 0, len(health.Tokens))
	for _, tok := range health.Tokens {
		label, ok := health.NameForToken(tok)
		if !ok {
			label = "Todas"
		}
		out = append(out, option{Value: tok, Label: label, Selected: tok == selected})
	}
	return out
}

// HealthPage applies the requested period and category and renders the view.
func (s *Server) HealthPage(c echo.Context) error {
	sess := sessionOf(c)
	ctx := c.Request().Context()
	fl := popFlash(c)

	cur := sess.Health.Snapshot()
	p, rng, requested, err := selection(c, cur.Period, cur.Range)
	category := cur.Category
	if q := c.QueryParam("category"); q != "" {
		category = q
		requested = true
	}
	if err == nil && (requested || !sess.Health.Loaded()) {
		err = sess.Health.Select(ctx, p, rng, category)
	}
	if err != nil {
		fl = &flash{Kind: flashError, Message: err.Error()}
		if !sess.Health.Loaded() {
			if ferr := sess.Health.Select(ctx, cur.Period, cur.Range, cur.Category); ferr != nil {
				s.logger.Warn().Err(ferr).Str("period", cur.Period.String()).Msg("fallback health selection failed")
			}
		}
	}

	st := sess.Health.Snapshot()
	return c.Render(http.StatusOK, "health", healthPage{
		State:      st,
		Periods:    periodOptions(st.Period),
		Categories: categoryOptions(st.Category),
		Flash:      fl,
		Version:    time.Now().UnixNano(),
	})
}

func (s *Server) UpdateHealthEvent(c echo.Context) error {
	id, ok := formID(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, healthPath)
	}
	rating, err := strconv.Atoi(strings.TrimSpace(c.FormValue("rating")))
	if err != nil {
		setFlash(c, flashError, "La calificación debe ser un número entre 0 y 10")
		return c.Redirect(http.StatusSeeOther, healthPath)
	}
	if _, err := sessionOf(c).Health.UpdateEvent(c.Request().Context(), id, c.FormValue("value"), rating); err != nil {
		setFlash(c, flashError, apiclient.Message(err))
	} else {
		setFlash(c, flashSuccess, "Evento de salud actualizado correctamente")
	}
	return c.Redirect(http.StatusSeeOther, healthPath)
}

func (s *Server) HealthState(c echo.Context) error {
	v := sessionOf(c).Health
	if !v.Loaded() {
		st := v.Snapshot()
		if err := v.Select(c.Request().Context(), st.Period, st.Range, st.Category); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// HealthTrend renders a metric series for the session's health period.
// A period without readings answers 204.
func (s *Server) HealthTrend(c echo.Context) error {
	metric := c.QueryParam("metric")
	if metric == "" {
		metric = health.MetricTemperature
	}
	if !health.ValidMetric(metric) {
		return echo.NewHTTPError(http.StatusBadRequest, "Tipo de métrica no válido")
	}
	m, err := sessionOf(c).Health.Trend(c.Request().Context(), metric)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, apiclient.Message(err)).SetInternal(err)
	}
	png, err := dashboard.RenderTrend(m, 480, 240)
	if errors.Is(err, dashboard.ErrNoTrendData) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "No se pudo generar el gráfico").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}
