package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/serena/serena/internal/config"
	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/internal/domain/patient"
	"github.com/serena/serena/internal/platform/auth"
	"github.com/serena/serena/internal/platform/db"
	"github.com/serena/serena/internal/platform/middleware"
)

func apiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Start the backend REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAPI()
		},
	}
}

func runAPI() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if err := cfg.ValidateAPI(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := context.Background()
	pool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	e := newAPIServer(cfg, pool, logger)
	return serve(e, ":"+cfg.Port, logger, nil)
}

// newAPIServer wires the middleware chain and the patient, financial and
// health domains.
func newAPIServer(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(middleware.APIContentPolicy))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	jwtCfg := auth.JWTConfig{Issuer: cfg.AuthIssuer, SigningKey: []byte(cfg.AuthSigningKey)}
	authMW := auth.JWTMiddleware(jwtCfg)
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtCfg)
	}
	api := e.Group("/api", authMW, db.SchemaMiddleware(pool, cfg.DBSchema))

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	patient.NewHandler(patientSvc).RegisterRoutes(api)

	financialSvc := financial.NewService(financial.NewTransactionRepoPG(pool), patientSvc)
	financial.NewHandler(financialSvc).RegisterRoutes(api)

	healthSvc := health.NewService(health.NewEventRepoPG(pool), patientSvc)
	health.NewHandler(healthSvc).RegisterRoutes(api)

	return e
}
