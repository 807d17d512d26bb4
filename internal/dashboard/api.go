package dashboard

import (
	"context"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/pkg/period"
)

// FinancialAPI is the part of the backend client the financial view uses.
type FinancialAPI interface {
	FinancialSummary(ctx context.Context, patientID int64, p period.Period, rng period.Range) (*financial.Summary, error)
	ExpensesByCategory(ctx context.Context, patientID int64, p period.Period, rng period.Range) ([]financial.CategoryAmount, error)
	TransactionsHistory(ctx context.Context, patientID int64, p period.Period, rng period.Range) ([]apiclient.Transaction, error)
	RegisterTransaction(ctx context.Context, patientID int64, in apiclient.NewTransaction) (*financial.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, in apiclient.TransactionEdit) (*financial.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
}

// HealthAPI is the part of the backend client the health view uses.
type HealthAPI interface {
	HealthSummary(ctx context.Context, patientID int64, p period.Period, rng period.Range) (*apiclient.Overview, error)
	HealthHistory(ctx context.Context, patientID int64, p period.Period, rng period.Range, category string) ([]apiclient.HealthEvent, error)
	HealthMetrics(ctx context.Context, patientID int64, metric string, p period.Period, rng period.Range) (*health.Metrics, error)
	UpdateHealthEvent(ctx context.Context, id int64, in apiclient.HealthEventEdit) (*health.HistoryItem, error)
}

// API is everything a session needs. *apiclient.Client satisfies it.
type API interface {
	FinancialAPI
	HealthAPI
}

var _ API = (*apiclient.Client)(nil)
