package dashboard

import (
	"testing"
	"time"
)

func TestSessionStore_GetOrCreate(t *testing.T) {
	st := NewSessionStore(newFakeAPI(), 1, time.Second, time.Minute)

	s, created := st.GetOrCreate("")
	if !created || s.ID == "" {
		t.Fatalf("expected a new session, got %+v", s)
	}
	again, created := st.GetOrCreate(s.ID)
	if created || again != s {
		t.Error("expected the existing session")
	}
	other, created := st.GetOrCreate("unknown")
	if !created || other.ID == "unknown" {
		t.Error("unknown ids must get a fresh session id")
	}
	if st.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", st.Len())
	}
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	st := NewSessionStore(newFakeAPI(), 1, time.Second, 30*time.Minute)
	st.now = func() time.Time { return now }

	idle, _ := st.GetOrCreate("")
	active, _ := st.GetOrCreate("")

	now = now.Add(20 * time.Minute)
	st.Touch(active.ID)
	now = now.Add(15 * time.Minute)

	if _, ok := st.Get(idle.ID); ok {
		t.Error("expected idle session to expire")
	}
	if _, ok := st.Get(active.ID); !ok {
		t.Error("expected touched session to survive")
	}

	now = now.Add(time.Hour)
	if n := st.Sweep(); n != 1 {
		t.Errorf("expected 1 swept session, got %d", n)
	}
	if st.Len() != 0 {
		t.Errorf("expected empty store, got %d", st.Len())
	}
}
