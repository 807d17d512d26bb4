package main

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/config"
	"github.com/serena/serena/internal/dashboard"
	"github.com/serena/serena/internal/domain/patient"
	"github.com/serena/serena/internal/platform/auth"
	"github.com/serena/serena/internal/platform/middleware"
	"github.com/serena/serena/internal/platform/websocket"
	"github.com/serena/serena/internal/web"
)

const dashboardSubject = "serena-dashboard"

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Start the caregiver dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard()
		},
	}
}

func runDashboard() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.ValidateDashboard(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	d, err := newDashboard(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.poller.Run(ctx)
		close(done)
	}()

	return serve(d.echo, ":"+cfg.DashboardPort, logger, func() {
		cancel()
		<-done
	})
}

type dashboardApp struct {
	echo   *echo.Echo
	poller *dashboard.Poller
	store  *dashboard.SessionStore
}

// newDashboard builds the backend client, session store, poller, websocket
// hub and web server.
func newDashboard(cfg *config.Config, logger zerolog.Logger) (*dashboardApp, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []apiclient.Option{
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
		apiclient.WithLogger(logger.With().Str("component", "apiclient").Logger()),
	}
	if cfg.AuthSigningKey != "" {
		issuer := auth.NewTokenIssuer(cfg.AuthIssuer, dashboardSubject, []string{auth.RoleCaregiver},
			[]byte(cfg.AuthSigningKey), 15*time.Minute)
		opts = append(opts, apiclient.WithTokenSource(issuer))
	}
	client := apiclient.New(cfg.APIBaseURL, cfg.RequestTimeout, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	err := verifyPatient(ctx, client, cfg.PatientID, logger)
	cancel()
	if err != nil {
		return nil, err
	}

	store := dashboard.NewSessionStore(client, cfg.PatientID, cfg.RequestTimeout, cfg.SessionIdleTimeout)
	hub := websocket.NewHub(logger)
	poller := dashboard.NewPoller(store, cfg.PollInterval, hub, logger)

	srv, err := web.New(web.Options{
		Store:         store,
		Poller:        poller,
		Hub:           hub,
		Registry:      reg,
		Logger:        logger,
		SecureCookies: cfg.IsProduction(),
	})
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler(logger)
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(middleware.PageContentPolicy))
	srv.RegisterRoutes(e)

	return &dashboardApp{echo: e, poller: poller, store: store}, nil
}

// patientLister is the part of the backend client verifyPatient needs.
type patientLister interface {
	Patients(ctx context.Context) ([]patient.ListItem, error)
}

// verifyPatient checks that the configured patient exists. An unreachable
// backend only logs, since the dashboard reports backend errors per view.
func verifyPatient(ctx context.Context, pl patientLister, id int64, logger zerolog.Logger) error {
	list, err := pl.Patients(ctx)
	if err != nil {
		logger.Warn().Err(err).Int64("patient_id", id).Msg("could not verify patient, backend unavailable")
		return nil
	}
	for _, p := range list {
		if p.ID == id {
			logger.Info().Int64("patient_id", id).Str("patient", p.Name).Msg("dashboard patient")
			return nil
		}
	}
	return fmt.Errorf("patient %d not found in the backend (%d known)", id, len(list))
}
