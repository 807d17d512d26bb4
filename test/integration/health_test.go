package integration

import (
	"testing"
	"time"

	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/pkg/period"
)

func record(t *testing.T, f *fixture, e *health.Event) {
	t.Helper()
	if err := f.health.RecordEvent(f.ctx, e); err != nil {
		t.Fatalf("record %s/%s: %v", e.Category, e.Subcategory, err)
	}
}

func TestHealthHistoryAndSummary(t *testing.T) {
	f := newFixture(t)
	p := f.createPatient(t, "Rosa Díaz")
	now := time.Now()

	record(t, f, &health.Event{PatientID: p.ID, Category: health.CategoryPhysical, Subcategory: health.SubSymptoms,
		Value: "Presión 145/92", Rating: 6, RecordedAt: now.Add(-2 * time.Hour)})
	record(t, f, &health.Event{PatientID: p.ID, Category: health.CategoryCognitive, Subcategory: "Memoria",
		Value: "Recordó las citas de la semana", Rating: 8, RecordedAt: now.Add(-time.Hour)})
	record(t, f, &health.Event{PatientID: p.ID, Category: health.CategoryEmotional, Subcategory: "Ánimo",
		Value: "Tranquila", Rating: 7, RecordedAt: now.AddDate(0, 0, -20)})

	w, err := period.Resolve(period.Week, now, period.Range{})
	if err != nil {
		t.Fatal(err)
	}

	all, err := f.health.History(f.ctx, p.ID, w, health.TokenAll)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events this week, got %d", len(all))
	}
	if all[0].Category != health.CategoryCognitive {
		t.Errorf("expected newest first, got %s", all[0].Category)
	}

	cognitive, err := f.health.History(f.ctx, p.ID, w, health.TokenCognitive)
	if err != nil {
		t.Fatalf("History cognitive: %v", err)
	}
	if len(cognitive) != 1 || cognitive[0].Value != "Recordó las citas de la semana" {
		t.Errorf("unexpected cognitive history %+v", cognitive)
	}

	sum, err := f.health.Summary(f.ctx, p.ID, w)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !sum.HasData {
		t.Fatal("expected hasData")
	}
	if sum.PhysicalVars.BloodPressure.Value != "145/92" {
		t.Errorf("expected blood pressure 145/92, got %q", sum.PhysicalVars.BloodPressure.Value)
	}
}

func TestHealthUpdateEvent(t *testing.T) {
	f := newFixture(t)
	p := f.createPatient(t, "Rosa Díaz")
	e := &health.Event{PatientID: p.ID, Category: health.CategoryAutonomy, Subcategory: health.SubMobility,
		Value: "Camina con ayuda", Rating: 5}
	record(t, f, e)

	rating := 7
	updated, err := f.health.UpdateEvent(f.ctx, e.ID, health.UpdateRequest{Value: ptrStr("Camina sola por la casa"), Rating: &rating})
	if err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}
	if !updated.Edited || updated.Rating != 7 || updated.Confidence != 0.7 {
		t.Errorf("unexpected update result %+v", updated)
	}
}
