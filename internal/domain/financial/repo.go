package financial

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

// Filter narrows transaction queries to a patient and a [From, To) window.
type Filter struct {
	PatientID int64
	From      time.Time
	To        time.Time
}

type TransactionRepository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id int64) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Transaction, int, error)
	Totals(ctx context.Context, f Filter) (income, expenses decimal.Decimal, err error)
	ExpensesByCategory(ctx context.Context, f Filter) ([]CategoryAmount, error)
}

// PatientLookup is satisfied by the patient service.
type PatientLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
