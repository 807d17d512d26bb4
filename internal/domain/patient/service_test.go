package patient

import (
	"context"
	"testing"
	"time"
)

type mockRepo struct {
	records map[int64]*Patient
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.records[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := m.records[id]
	return ok, nil
}

func (m *mockRepo) List(_ context.Context) ([]*Patient, error) {
	var out []*Patient
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.records[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService() *Service {
	return NewService(newMockRepo())
}

func TestCreatePatient(t *testing.T) {
	svc := newTestService()
	p := &Patient{Name: "  Rosa Martínez "}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == 0 {
		t.Error("expected ID to be set")
	}
	if p.Name != "Rosa Martínez" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc := newTestService()
	if err := svc.CreatePatient(context.Background(), &Patient{}); err == nil {
		t.Error("expected error for missing name")
	}
	age := -1
	if err := svc.CreatePatient(context.Background(), &Patient{Name: "X", Age: &age}); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestListPatients(t *testing.T) {
	svc := newTestService()
	svc.CreatePatient(context.Background(), &Patient{Name: "Rosa"})
	svc.CreatePatient(context.Background(), &Patient{Name: "Juan"})

	items, err := svc.ListPatients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(items))
	}
	if items[0].ID != 1 || items[0].Name != "Rosa" {
		t.Errorf("unexpected first item %+v", items[0])
	}
}

func TestExists(t *testing.T) {
	svc := newTestService()
	svc.CreatePatient(context.Background(), &Patient{Name: "Rosa"})

	if ok, _ := svc.Exists(context.Background(), 1); !ok {
		t.Error("expected patient 1 to exist")
	}
	if ok, _ := svc.Exists(context.Background(), 99); ok {
		t.Error("expected patient 99 not to exist")
	}
}
