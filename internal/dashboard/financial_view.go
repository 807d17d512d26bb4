package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/domain/financial"
	"github.com/serena/serena/pkg/period"
)

// FinancialState is a consistent copy of the financial view for rendering.
type FinancialState struct {
	Period       period.Period                     `json:"period"`
	PeriodLabel  string                            `json:"periodLabel"`
	Range        period.Range                      `json:"range"`
	Total        Slice[decimal.Decimal]            `json:"total"`
	Categories   Slice[[]financial.CategoryAmount] `json:"categories"`
	Transactions Slice[[]apiclient.Transaction]    `json:"transactions"`
	Breakdown    Breakdown                         `json:"breakdown"`
}

// FinancialView owns the selected period and three slices: the monthly
// expense total (period independent), the expense categories and the
// transaction history.
type FinancialView struct {
	api       FinancialAPI
	patientID int64
	timeout   time.Duration
	now       func() time.Time

	mu           sync.Mutex
	period       period.Period
	rng          period.Range
	loaded       bool
	total        Slice[decimal.Decimal]
	categories   Slice[[]financial.CategoryAmount]
	transactions Slice[[]apiclient.Transaction]
}

func NewFinancialView(api FinancialAPI, patientID int64, timeout time.Duration) *FinancialView {
	return &FinancialView{
		api:       api,
		patientID: patientID,
		timeout:   timeout,
		now:       time.Now,
		period:    period.Month,
	}
}

// Loaded reports whether the view has been loaded at least once.
func (v *FinancialView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// SetPeriod switches the period and reloads the period dependent slices.
// The monthly total is only fetched on the first load.
func (v *FinancialView) SetPeriod(ctx context.Context, p period.Period, rng period.Range) error {
	if _, err := period.Resolve(p, v.now(), rng); err != nil {
		return err
	}
	if p != period.Custom {
		rng = period.Range{}
	}
	v.mu.Lock()
	changed := p != v.period || rng != v.rng
	v.period, v.rng = p, rng
	first := !v.loaded
	v.mu.Unlock()

	if changed || first {
		v.load(ctx, first)
	}
	return nil
}

// Refresh reloads every slice.
func (v *FinancialView) Refresh(ctx context.Context) {
	v.load(ctx, true)
}

func (v *FinancialView) load(ctx context.Context, withTotal bool) {
	v.mu.Lock()
	p, rng := v.period, v.rng
	catGen := v.categories.begin()
	txGen := v.transactions.begin()
	var totalGen uint64
	if withTotal || !v.loaded {
		withTotal = true
		totalGen = v.total.begin()
	}
	v.loaded = true
	v.mu.Unlock()

	ctx, cancel := withTimeout(ctx, v.timeout)
	defer cancel()

	var wg conc.WaitGroup
	if withTotal {
		wg.Go(func() {
			var total decimal.Decimal
			s, err := v.api.FinancialSummary(ctx, v.patientID, period.Month, period.Range{})
			if err == nil {
				total = s.Expenses
			}
			settle(&v.mu, &v.total, totalGen, total, err)
		})
	}
	wg.Go(func() {
		cats, err := v.api.ExpensesByCategory(ctx, v.patientID, p, rng)
		settle(&v.mu, &v.categories, catGen, cats, err)
	})
	wg.Go(func() {
		txs, err := v.api.TransactionsHistory(ctx, v.patientID, p, rng)
		settle(&v.mu, &v.transactions, txGen, txs, err)
	})
	wg.Wait()
}

// Snapshot copies the current state.
func (v *FinancialView) Snapshot() FinancialState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return FinancialState{
		Period:       v.period,
		PeriodLabel:  v.period.Label(),
		Range:        v.rng,
		Total:        v.total,
		Categories:   v.categories,
		Transactions: v.transactions,
		Breakdown:    ExpenseBreakdown(v.categories.Data),
	}
}

// Register creates a manual transaction and reloads the view.
func (v *FinancialView) Register(ctx context.Context, in apiclient.NewTransaction) (*financial.Transaction, error) {
	cctx, cancel := withTimeout(ctx, v.timeout)
	tx, err := v.api.RegisterTransaction(cctx, v.patientID, in)
	cancel()
	if err != nil {
		return nil, err
	}
	v.Refresh(ctx)
	return tx, nil
}

// Update edits a transaction and reloads the view.
func (v *FinancialView) Update(ctx context.Context, id int64, in apiclient.TransactionEdit) (*financial.Transaction, error) {
	cctx, cancel := withTimeout(ctx, v.timeout)
	tx, err := v.api.UpdateTransaction(cctx, id, in)
	cancel()
	if err != nil {
		return nil, err
	}
	v.Refresh(ctx)
	return tx, nil
}

// Delete removes a transaction and reloads the view.
func (v *FinancialView) Delete(ctx context.Context, id int64) error {
	cctx, cancel := withTimeout(ctx, v.timeout)
	err := v.api.DeleteTransaction(cctx, id)
	cancel()
	if err != nil {
		return err
	}
	v.Refresh(ctx)
	return nil
}

func settle[T any](mu *sync.Mutex, s *Slice[T], gen uint64, data T, err error) {
	mu.Lock()
	defer mu.Unlock()
	s.finish(gen, data, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
