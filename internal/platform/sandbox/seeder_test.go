package sandbox

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/internal/domain/patient"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakePatients struct{ created []*patient.Patient }

func (f *fakePatients) CreatePatient(_ context.Context, p *patient.Patient) error {
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, p)
	return nil
}

type fakeTransactions struct {
	reqs []financial.CreateRequest
	fail bool
}

func (f *fakeTransactions) Register(_ context.Context, req financial.CreateRequest) (*financial.Transaction, error) {
	if f.fail {
		return nil, errors.New("boom")
	}
	f.reqs = append(f.reqs, req)
	return &financial.Transaction{ID: int64(len(f.reqs))}, nil
}

type fakeEvents struct{ events []*health.Event }

func (f *fakeEvents) RecordEvent(_ context.Context, e *health.Event) error {
	f.events = append(f.events, e)
	return nil
}

func testSeeder(cfg SeedConfig) (*Seeder, *fakePatients, *fakeTransactions, *fakeEvents) {
	p, tx, ev := &fakePatients{}, &fakeTransactions{}, &fakeEvents{}
	s := NewSeeder(cfg, p, tx, ev, zerolog.Nop())
	s.now = func() time.Time { return time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC) }
	return s, p, tx, ev
}

// ---------------------------------------------------------------------------
// DataGenerator
// ---------------------------------------------------------------------------

func TestDataGenerator_Deterministic(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	cfg := DefaultSeedConfig()
	cfg.Seed = 42

	a := NewDataGenerator(42).Generate(cfg, now)
	b := NewDataGenerator(42).Generate(cfg, now)

	if len(a.HealthEvents) != len(b.HealthEvents) {
		t.Fatal("expected same event count")
	}
	for i := range a.HealthEvents {
		if a.HealthEvents[i].Value != b.HealthEvents[i].Value {
			t.Fatalf("event %d differs: %q vs %q", i, a.HealthEvents[i].Value, b.HealthEvents[i].Value)
		}
	}
}

func TestDataGenerator_GenerateExpense_Valid(t *testing.T) {
	gen := NewDataGenerator(7)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		req := gen.GenerateExpense(1, day)
		if *req.Type != financial.TypeExpense {
			t.Fatalf("expected expense, got %s", *req.Type)
		}
		if !financial.ValidCategory(*req.Type, *req.Category) {
			t.Fatalf("invalid category %q", *req.Category)
		}
		if req.Amount.IsNegative() || req.Amount.IsZero() {
			t.Fatalf("expected positive amount, got %s", req.Amount)
		}
		if *req.Date != "2024-03-01" {
			t.Fatalf("unexpected date %s", *req.Date)
		}
	}
}

func TestDataGenerator_GenerateEvent_Valid(t *testing.T) {
	gen := NewDataGenerator(7)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		e := gen.GenerateEvent(1, at)
		if !health.ValidCategory(e.Category) {
			t.Fatalf("invalid category %q", e.Category)
		}
		if e.Rating < 0 || e.Rating > 10 {
			t.Fatalf("rating out of range: %d", e.Rating)
		}
		if strings.Contains(e.Value, "%!") {
			t.Fatalf("bad format in %q", e.Value)
		}
		if e.Subcategory == health.SubSymptoms {
			lower := strings.ToLower(e.Value)
			switch {
			case strings.Contains(lower, "presión"):
				if _, ok := health.BloodPressure(lower); !ok {
					t.Fatalf("unparseable blood pressure %q", e.Value)
				}
			case strings.Contains(lower, "temperatura"):
				if _, ok := health.Temperature(lower); !ok {
					t.Fatalf("unparseable temperature %q", e.Value)
				}
			}
		}
	}
}

func TestGenerate_Volume(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	cfg := SeedConfig{PatientName: "Rosa", Days: 10, ExpensesPerDay: 2, HealthEventsPerDay: 3, Seed: 1}
	plan := NewDataGenerator(1).Generate(cfg, now)

	if len(plan.Transactions) != 20 {
		t.Errorf("expected 20 transactions, got %d", len(plan.Transactions))
	}
	if len(plan.HealthEvents) != 30 {
		t.Errorf("expected 30 events, got %d", len(plan.HealthEvents))
	}
	for _, e := range plan.HealthEvents {
		if e.RecordedAt.After(now) {
			t.Fatalf("event in the future: %s", e.RecordedAt)
		}
	}
}

func TestGenerate_MonthlyCharges(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	cfg := SeedConfig{PatientName: "Rosa", Days: 20, IncludeMonthlyIncome: true, Seed: 1}
	plan := NewDataGenerator(1).Generate(cfg, now)

	// first day (Feb 25) and Mar 1
	if want := 2 * len(monthlyCharges); len(plan.Transactions) != want {
		t.Errorf("expected %d monthly charges, got %d", want, len(plan.Transactions))
	}
	for _, req := range plan.Transactions {
		if !financial.ValidCategory(*req.Type, *req.Category) {
			t.Errorf("invalid category %q for %s", *req.Category, *req.Type)
		}
	}
}

// ---------------------------------------------------------------------------
// Seeder
// ---------------------------------------------------------------------------

func TestSeeder_Run(t *testing.T) {
	cfg := SeedConfig{PatientName: "Rosa Martínez", Days: 5, ExpensesPerDay: 1, HealthEventsPerDay: 2, Seed: 3}
	s, p, tx, ev := testSeeder(cfg)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.created) != 1 || p.created[0].Name != "Rosa Martínez" {
		t.Fatalf("expected one patient, got %+v", p.created)
	}
	if result.PatientID != 1 || result.Transactions != 5 || result.HealthEvents != 10 {
		t.Errorf("unexpected result %+v", result)
	}
	for _, req := range tx.reqs {
		if *req.PatientID != 1 {
			t.Fatalf("transaction not bound to patient: %d", *req.PatientID)
		}
	}
	for _, e := range ev.events {
		if e.PatientID != 1 {
			t.Fatalf("event not bound to patient: %d", e.PatientID)
		}
	}
}

func TestSeeder_Run_PropagatesErrors(t *testing.T) {
	s, _, tx, _ := testSeeder(SeedConfig{PatientName: "Rosa", Days: 1, ExpensesPerDay: 1, Seed: 3})
	tx.fail = true
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPlan_ExportNDJSON(t *testing.T) {
	s, _, _, _ := testSeeder(SeedConfig{PatientName: "Rosa", Days: 2, ExpensesPerDay: 1, HealthEventsPerDay: 1, Seed: 9})
	var buf bytes.Buffer
	if err := s.Plan().ExportNDJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := 0
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		lines++
	}
	if lines != 1+2+2 {
		t.Errorf("expected 5 lines, got %d", lines)
	}
}
