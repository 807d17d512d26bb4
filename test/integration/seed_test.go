package integration

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/serena/serena/internal/platform/sandbox"
)

func TestSeederRun(t *testing.T) {
	f := newFixture(t)

	cfg := sandbox.DefaultSeedConfig()
	cfg.Days = 3
	cfg.Seed = 11
	res, err := sandbox.NewSeeder(cfg, f.patients, f.financial, f.health, zerolog.Nop()).Run(f.ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.PatientID == 0 || res.Transactions == 0 || res.HealthEvents == 0 {
		t.Errorf("expected a populated result, got %+v", res)
	}

	var count int
	if err := globalPool.QueryRow(f.ctx, "SELECT COUNT(*) FROM "+f.schema+".financial_transactions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != res.Transactions {
		t.Errorf("expected %d stored transactions, got %d", res.Transactions, count)
	}
}
