package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/dashboard"
	"github.com/serena/serena/internal/domain/financial"
)

const financialPath = "/financial"

type financialPage struct {
	State             dashboard.FinancialState
	Periods           []option
	ExpenseCategories []string
	IncomeCategories  []string
	Flash             *flash
	Version           int64
}

// FinancialPage applies the requested period, loading the view on first
// visit, and renders it.
func (s *Server) FinancialPage(c echo.Context) error {
	sess := sessionOf(c)
	ctx := c.Request().Context()
	fl := popFlash(c)

	cur := sess.Financial.Snapshot()
	p, rng, requested, err := selection(c, cur.Period, cur.Range)
	if err == nil && (requested || !sess.Financial.Loaded()) {
		err = sess.Financial.SetPeriod(ctx, p, rng)
	}
	if err != nil {
		fl = &flash{Kind: flashError, Message: err.Error()}
		if !sess.Financial.Loaded() {
			if ferr := sess.Financial.SetPeriod(ctx, cur.Period, cur.Range); ferr != nil {
				s.logger.Warn().Err(ferr).Str("period", cur.Period.String()).Msg("fallback financial period failed")
			}
		}
	}

	st := sess.Financial.Snapshot()
	return c.Render(http.StatusOK, "financial", financialPage{
		State:             st,
		Periods:           periodOptions(st.Period),
		ExpenseCategories: financial.ExpenseCategories,
		IncomeCategories:  financial.IncomeCategories,
		Flash:             fl,
		Version:           time.Now().UnixNano(),
	})
}

// FinancialChart renders the expense distribution of the session's current
// period. An empty period answers 204.
func (s *Server) FinancialChart(c echo.Context) error {
	b := sessionOf(c).Financial.Snapshot().Breakdown
	png, err := dashboard.RenderChart(b, 320, 320)
	if errors.Is(err, dashboard.ErrNoChartData) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "No se pudo generar el gráfico").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) RegisterTransaction(c echo.Context) error {
	in := apiclient.NewTransaction{
		Type:        c.FormValue("type"),
		Category:    c.FormValue("category"),
		Amount:      c.FormValue("amount"),
		Description: c.FormValue("description"),
	}
	if _, err := sessionOf(c).Financial.Register(c.Request().Context(), in); err != nil {
		setFlash(c, flashError, apiclient.Message(err))
	} else {
		setFlash(c, flashSuccess, "Transacción registrada correctamente")
	}
	return c.Redirect(http.StatusSeeOther, financialPath)
}

func (s *Server) UpdateTransaction(c echo.Context) error {
	id, ok := formID(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, financialPath)
	}
	in := apiclient.TransactionEdit{
		Description: c.FormValue("description"),
		Amount:      c.FormValue("amount"),
	}
	if _, err := sessionOf(c).Financial.Update(c.Request().Context(), id, in); err != nil {
		setFlash(c, flashError, apiclient.Message(err))
	} else {
		setFlash(c, flashSuccess, "Transacción actualizada correctamente")
	}
	return c.Redirect(http.StatusSeeOther, financialPath)
}

func (s *Server) DeleteTransaction(c echo.Context) error {
	id, ok := formID(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, financialPath)
	}
	if err := sessionOf(c).Financial.Delete(c.Request().Context(), id); err != nil {
		setFlash(c, flashError, apiclient.Message(err))
	} else {
		setFlash(c, flashSuccess, "Transacción eliminada correctamente")
	}
	return c.Redirect(http.StatusSeeOther, financialPath)
}

// FinancialState returns the view state as JSON, loading it on first use.
func (s *Server) FinancialState(c echo.Context) error {
	v := sessionOf(c).Financial
	if !v.Loaded() {
		st := v.Snapshot()
		if err := v.SetPeriod(c.Request().Context(), st.Period, st.Range); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, v.Snapshot())
}

// formID parses the :id path parameter, setting an error flash when invalid.
func formID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		setFlash(c, flashError, "ID no válido")
		return 0, false
	}
	return id, true
}
