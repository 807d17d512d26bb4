package health

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/serena/serena/pkg/period"
)

type mockEventRepo struct {
	records map[int64]*Event
	nextID  int64
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{records: make(map[int64]*Event)}
}

func (m *mockEventRepo) Create(_ context.Context, e *Event) error {
	m.nextID++
	e.ID = m.nextID
	e.UpdatedAt = time.Now()
	cp := *e
	m.records[e.ID] = &cp
	return nil
}

func (m *mockEventRepo) GetByID(_ context.Context, id int64) (*Event, error) {
	e, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockEventRepo) Update(_ context.Context, e *Event) error {
	if _, ok := m.records[e.ID]; !ok {
		return ErrNotFound
	}
	cp := *e
	m.records[e.ID] = &cp
	return nil
}

func (m *mockEventRepo) List(_ context.Context, f Filter, limit int) ([]*Event, error) {
	w := period.Window{From: f.From, To: f.To}
	var out []*Event
	for _, e := range m.records {
		if e.PatientID != f.PatientID || !w.Contains(e.RecordedAt) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Subcategory != "" && e.Subcategory != f.Subcategory {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type mockPatients map[int64]bool

func (m mockPatients) Exists(_ context.Context, id int64) (bool, error) {
	return m[id], nil
}

func newTestService() *Service {
	return NewService(newMockEventRepo(), mockPatients{1: true})
}

func record(t *testing.T, svc *Service, category, sub, value string, rating int, ago time.Duration) *Event {
	t.Helper()
	e := &Event{
		PatientID:   1,
		Category:    category,
		Subcategory: sub,
		Value:       value,
		Rating:      rating,
		RecordedAt:  time.Now().Add(-ago),
	}
	if err := svc.RecordEvent(context.Background(), e); err != nil {
		t.Fatalf("record: %v", err)
	}
	return e
}

func weekWindow() period.Window {
	w, _ := period.Resolve(period.Week, time.Now().Add(time.Minute), period.Range{})
	return w
}

func TestRecordEvent_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	if err := svc.RecordEvent(ctx, &Event{PatientID: 1, Category: "Gastos", Value: "x", Rating: 5}); err == nil {
		t.Error("expected error for unknown category")
	}
	if err := svc.RecordEvent(ctx, &Event{PatientID: 1, Category: CategoryPhysical, Value: " ", Rating: 5}); err == nil {
		t.Error("expected error for empty value")
	}
	if err := svc.RecordEvent(ctx, &Event{PatientID: 1, Category: CategoryPhysical, Value: "x", Rating: 11}); err == nil {
		t.Error("expected error for rating out of range")
	}
	err := svc.RecordEvent(ctx, &Event{PatientID: 5, Category: CategoryPhysical, Value: "x", Rating: 5})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}

	e := &Event{PatientID: 1, Category: CategoryPhysical, Value: "x", Rating: 7}
	if err := svc.RecordEvent(ctx, e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Confidence != 0.7 || e.RecordedAt.IsZero() {
		t.Errorf("expected derived confidence and timestamp, got %+v", e)
	}
}

func TestServiceSummary(t *testing.T) {
	svc := newTestService()
	s, err := svc.Summary(context.Background(), 1, weekWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.HasData {
		t.Error("expected no data")
	}

	record(t, svc, CategoryPhysical, SubSymptoms, "Presión 150/95", 3, time.Hour)
	s, err = svc.Summary(context.Background(), 1, weekWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.HasData || s.PhysicalVars.BloodPressure.Value != "150/95" {
		t.Errorf("unexpected summary %+v", s)
	}

	if _, err := svc.Summary(context.Background(), 2, weekWindow()); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestServiceHistory_CategoryFilter(t *testing.T) {
	svc := newTestService()
	record(t, svc, CategoryPhysical, SubMobility, "Caminó", 7, 2*time.Hour)
	record(t, svc, CategoryEmotional, "Ánimo", "Contento", 9, time.Hour)
	record(t, svc, CategoryEmotional, "Ánimo", "Hace un mes", 9, 40*24*time.Hour)

	all, err := svc.History(context.Background(), 1, weekWindow(), TokenAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].Value != "Contento" {
		t.Errorf("expected 2 items newest first, got %+v", all)
	}

	emo, err := svc.History(context.Background(), 1, weekWindow(), TokenEmotional)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emo) != 1 || emo[0].Category != CategoryEmotional {
		t.Errorf("unexpected filtered history %+v", emo)
	}

	unknown, _ := svc.History(context.Background(), 1, weekWindow(), "spiritual")
	if len(unknown) != 2 {
		t.Errorf("unknown token should not filter, got %d", len(unknown))
	}
}

func TestServiceUpdateEvent(t *testing.T) {
	svc := newTestService()
	e := record(t, svc, CategoryCognitive, "Memoria", "Confuso", 3, time.Hour)

	rating := 6
	value := " Algo confuso "
	updated, err := svc.UpdateEvent(context.Background(), e.ID, UpdateRequest{Value: &value, Rating: &rating})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Edited || updated.Value != "Algo confuso" || updated.Rating != 6 || updated.Confidence != 0.6 {
		t.Errorf("unexpected update %+v", updated)
	}
	if updated.ID != e.ID || updated.Category != CategoryCognitive {
		t.Error("id and category must be preserved")
	}

	bad := 12
	if _, err := svc.UpdateEvent(context.Background(), e.ID, UpdateRequest{Rating: &bad}); err == nil {
		t.Error("expected error for rating out of range")
	}
	if _, err := svc.UpdateEvent(context.Background(), e.ID, UpdateRequest{}); err == nil {
		t.Error("expected error for empty update")
	}
	if _, err := svc.UpdateEvent(context.Background(), 99, UpdateRequest{Rating: &rating}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceMetrics(t *testing.T) {
	svc := newTestService()
	record(t, svc, CategoryPhysical, SubSymptoms, "Temperatura 37", 8, 3*time.Hour)
	record(t, svc, CategoryPhysical, SubSymptoms, "Temperatura 38,5", 2, time.Hour)

	m, err := svc.Metrics(context.Background(), 1, MetricTemperature, weekWindow())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Readings) != 2 || m.Readings[0].Value != "37" || m.Readings[1].Value != "38.5" {
		t.Errorf("expected oldest first, got %+v", m.Readings)
	}
	if _, err := svc.Metrics(context.Background(), 1, "weight", weekWindow()); !errors.Is(err, ErrInvalidMetric) {
		t.Errorf("expected ErrInvalidMetric, got %v", err)
	}
}
