package dashboard

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/pkg/period"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	expenses      decimal.Decimal
	summaryErr    error
	categories    map[period.Period][]financial.CategoryAmount
	categoriesErr error
	txErr         error
	overviewErr   error
	mutationErr   error

	historyScore int
	metrics      *health.Metrics
	lastMetric   string
	extraEvents  []apiclient.HealthEvent
	lastEdit     apiclient.HealthEventEdit

	lastCategory string
	registered   []apiclient.NewTransaction
	deleted      []int64

	// gate blocks ExpensesByCategory for gatedPeriod until closed.
	gate        chan struct{}
	gatedPeriod period.Period
	started     chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls:        make(map[string]int),
		expenses:     decimal.NewFromInt(80000),
		historyScore: 8,
		categories: map[period.Period][]financial.CategoryAmount{
			period.Month: {
				{Name: "Vivienda", Amount: decimal.NewFromInt(45000), Color: "#1e40af"},
				{Name: "Salud", Amount: decimal.NewFromInt(35000), Color: "#f97316"},
			},
			period.Week: {
				{Name: "Supermercado", Amount: decimal.NewFromInt(12000), Color: "#22c55e"},
			},
		},
	}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// set changes the fake's data under its lock.
func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) FinancialSummary(ctx context.Context, patientID int64, p period.Period, rng period.Range) (*financial.Summary, error) {
	f.record("summary")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return &financial.Summary{Expenses: f.expenses, Income: decimal.Zero, Period: p.String()}, nil
}

func (f *fakeAPI) ExpensesByCategory(ctx context.Context, patientID int64, p period.Period, rng period.Range) ([]financial.CategoryAmount, error) {
	f.record("categories")
	if f.gate != nil && p == f.gatedPeriod {
		f.started <- struct{}{}
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories[p], nil
}

func (f *fakeAPI) TransactionsHistory(ctx context.Context, patientID int64, p period.Period, rng period.Range) ([]apiclient.Transaction, error) {
	f.record("transactions")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.txErr != nil {
		return nil, f.txErr
	}
	return []apiclient.Transaction{{ID: 1, Category: "Vivienda", Description: p.String(), Amount: decimal.NewFromInt(45000), Date: "01/03/24", Type: financial.TypeExpense}}, nil
}

func (f *fakeAPI) RegisterTransaction(ctx context.Context, patientID int64, in apiclient.NewTransaction) (*financial.Transaction, error) {
	f.record("register")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	f.registered = append(f.registered, in)
	return &financial.Transaction{ID: 9, Category: in.Category}, nil
}

func (f *fakeAPI) UpdateTransaction(ctx context.Context, id int64, in apiclient.TransactionEdit) (*financial.Transaction, error) {
	f.record("update")
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &financial.Transaction{ID: id, Edited: true}, nil
}

func (f *fakeAPI) DeleteTransaction(ctx context.Context, id int64) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutationErr != nil {
		return f.mutationErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) HealthSummary(ctx context.Context, patientID int64, p period.Period, rng period.Range) (*apiclient.Overview, error) {
	f.record("health_summary")
	if f.overviewErr != nil {
		return nil, f.overviewErr
	}
	return &apiclient.Overview{HasData: true, NormalValues: apiclient.NormalValues}, nil
}

func (f *fakeAPI) HealthHistory(ctx context.Context, patientID int64, p period.Period, rng period.Range, category string) ([]apiclient.HealthEvent, error) {
	f.record("health_history")
	f.mu.Lock()
	f.lastCategory = category
	score := f.historyScore
	extra := f.extraEvents
	f.mu.Unlock()
	events := []apiclient.HealthEvent{{ID: 1, Category: health.TokenPhysical, CategoryName: health.CategoryPhysical, Score: score}}
	return append(events, extra...), nil
}

func (f *fakeAPI) UpdateHealthEvent(ctx context.Context, id int64, in apiclient.HealthEventEdit) (*health.HistoryItem, error) {
	f.record("health_update")
	f.mu.Lock()
	f.lastEdit = in
	f.mu.Unlock()
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	return &health.HistoryItem{ID: id, Value: in.Value, Rating: in.Rating, Edited: true}, nil
}

func (f *fakeAPI) HealthMetrics(ctx context.Context, patientID int64, metric string, p period.Period, rng period.Range) (*health.Metrics, error) {
	f.record("health_metrics")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMetric = metric
	if f.metrics == nil {
		return &health.Metrics{Type: metric, Readings: []health.MetricReading{}}, nil
	}
	return f.metrics, nil
}
