package health

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("health event not found")

// Filter narrows event queries. Empty Category or Subcategory match all.
type Filter struct {
	PatientID   int64
	From        time.Time
	To          time.Time
	Category    string
	Subcategory string
}

type EventRepository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, e *Event) error
	// List returns matching events newest first. limit <= 0 means no limit.
	List(ctx context.Context, f Filter, limit int) ([]*Event, error)
}

// PatientLookup is satisfied by the patient service.
type PatientLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
