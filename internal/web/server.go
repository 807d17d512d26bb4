// Package web serves the caregiver dashboard: server rendered pages, the
// expense chart, JSON view state, live updates and operational endpoints.
package web

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/serena/serena/internal/dashboard"
	"github.com/serena/serena/internal/platform/websocket"
	"github.com/serena/serena/pkg/period"
)

type Options struct {
	Store         *dashboard.SessionStore
	Poller        *dashboard.Poller
	Hub           *websocket.Hub
	Registry      *prometheus.Registry
	Logger        zerolog.Logger
	SecureCookies bool
}

type Server struct {
	store         *dashboard.SessionStore
	poller        *dashboard.Poller
	hub           *websocket.Hub
	ws            *websocket.Handler
	registry      *prometheus.Registry
	renderer      *Renderer
	logger        zerolog.Logger
	secureCookies bool
}

// New builds the dashboard server. Visibility messages received over the
// websocket are forwarded to the poller.
func New(opts Options) (*Server, error) {
	r, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		store:         opts.Store,
		poller:        opts.Poller,
		hub:           opts.Hub,
		registry:      opts.Registry,
		renderer:      r,
		logger:        opts.Logger.With().Str("component", "web").Logger(),
		secureCookies: opts.SecureCookies,
	}
	s.ws = websocket.NewHandler(s.hub, s.resolveSession)
	if s.poller != nil {
		s.hub.OnVisible(s.poller.Visible)
	}

	if s.registry != nil {
		err := s.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "serena",
			Subsystem: "dashboard",
			Name:      "sessions",
			Help:      "Live dashboard sessions.",
		}, func() float64 { return float64(s.store.Len()) }))
		if err != nil {
			return nil, fmt.Errorf("register session gauge: %w", err)
		}
		err = s.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "serena",
			Subsystem: "dashboard",
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}, func() float64 { return float64(s.hub.ClientCount()) }))
		if err != nil {
			return nil, fmt.Errorf("register websocket gauge: %w", err)
		}
	}
	return s, nil
}

func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.Renderer = s.renderer

	e.GET("/healthz", s.Healthz)
	if s.registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}
	s.ws.RegisterRoutes(e)

	g := e.Group("", s.withSession)
	g.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/financial")
	})

	g.GET("/financial", s.FinancialPage)
	g.GET("/financial/chart.png", s.FinancialChart)
	g.POST("/financial/transactions", s.RegisterTransaction)
	g.POST("/financial/transactions/:id", s.UpdateTransaction)
	g.POST("/financial/transactions/:id/delete", s.DeleteTransaction)

	g.GET("/health-dashboard", s.HealthPage)
	g.GET("/health-dashboard/trend.png", s.HealthTrend)
	g.POST("/health-dashboard/events/:id", s.UpdateHealthEvent)

	g.GET("/api/views/financial", s.FinancialState)
	g.GET("/api/views/health", s.HealthState)
}

// Healthz reports liveness with a few counters.
func (s *Server) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"sessions":          s.store.Len(),
		"websocket_clients": s.hub.ClientCount(),
	})
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

func periodOptions(selected period.Period) []option {
	out := make([]option, 0, len(period.All))
	for _, p := range period.All {
		out = append(out, option{Value: p.String(), Label: p.Label(), Selected: p == selected})
	}
	return out
}

// selection reads period, from and to from the query. ok is false when the
// request carries no period selection.
func selection(c echo.Context, current period.Period, currentRange period.Range) (p period.Period, rng period.Range, ok bool, err error) {
	q := c.QueryParam("period")
	if q == "" && c.QueryParam("from") == "" {
		return current, currentRange, false, nil
	}
	p, err = period.Parse(q, current)
	if err != nil {
		return current, currentRange, true, err
	}
	return p, period.Range{From: c.QueryParam("from"), To: c.QueryParam("to")}, true, nil
}
