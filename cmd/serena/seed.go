package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serena/serena/internal/config"
	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/internal/domain/patient"
	"github.com/serena/serena/internal/platform/db"
	"github.com/serena/serena/internal/platform/sandbox"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a demo patient with financial and health history",
		RunE: func(cmd *cobra.Command, args []string) error {
			seedCfg, err := seedConfigFromFlags(cmd)
			if err != nil {
				return err
			}
			if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
				return sandbox.NewDataGenerator(seedCfg.Seed).
					Generate(seedCfg, nowFunc()).
					ExportNDJSON(cmd.OutOrStdout())
			}
			return runSeed(cmd, seedCfg)
		},
	}
	def := sandbox.DefaultSeedConfig()
	cmd.Flags().String("name", def.PatientName, "Patient name")
	cmd.Flags().Int("days", def.Days, "Days of history to generate")
	cmd.Flags().Int("expenses-per-day", def.ExpensesPerDay, "Expenses per day")
	cmd.Flags().Int("events-per-day", def.HealthEventsPerDay, "Health events per day")
	cmd.Flags().Bool("monthly-income", def.IncludeMonthlyIncome, "Add monthly pension and family contributions")
	cmd.Flags().Int64("seed", 0, "Random seed (0 uses the current time)")
	cmd.Flags().Bool("dry-run", false, "Print the generated records as NDJSON instead of writing them")
	return cmd
}

func seedConfigFromFlags(cmd *cobra.Command) (sandbox.SeedConfig, error) {
	cfg := sandbox.DefaultSeedConfig()
	f := cmd.Flags()
	cfg.PatientName, _ = f.GetString("name")
	cfg.Days, _ = f.GetInt("days")
	cfg.ExpensesPerDay, _ = f.GetInt("expenses-per-day")
	cfg.HealthEventsPerDay, _ = f.GetInt("events-per-day")
	cfg.IncludeMonthlyIncome, _ = f.GetBool("monthly-income")
	cfg.Seed, _ = f.GetInt64("seed")
	if cfg.Seed == 0 {
		cfg.Seed = nowFunc().UnixNano()
	}
	if cfg.Days <= 0 {
		return cfg, fmt.Errorf("--days must be positive, got %d", cfg.Days)
	}
	if cfg.ExpensesPerDay < 0 || cfg.HealthEventsPerDay < 0 {
		return cfg, fmt.Errorf("per-day counts must not be negative")
	}
	return cfg, nil
}

func runSeed(cmd *cobra.Command, seedCfg sandbox.SeedConfig) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	logger := newLogger(cfg.Env)

	ctx := context.Background()
	pool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx, release, err := db.WithSchema(ctx, pool, cfg.DBSchema)
	if err != nil {
		return err
	}
	defer release()

	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	financialSvc := financial.NewService(financial.NewTransactionRepoPG(pool), patientSvc)
	healthSvc := health.NewService(health.NewEventRepoPG(pool), patientSvc)

	res, err := sandbox.NewSeeder(seedCfg, patientSvc, financialSvc, healthSvc, logger).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded patient %d: %d transactions, %d health events\n",
		res.PatientID, res.Transactions, res.HealthEvents)
	return nil
}
