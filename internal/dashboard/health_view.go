package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/serena/serena/internal/apiclient"
	"github.com/serena/serena/internal/domain/health"
	"github.com/serena/serena/pkg/period"
)

// HealthState is a consistent copy of the health view for rendering.
type HealthState struct {
	Period      period.Period                  `json:"period"`
	PeriodLabel string                         `json:"periodLabel"`
	Range       period.Range                   `json:"range"`
	Category    string                         `json:"category"`
	Summary     Slice[*apiclient.Overview]     `json:"summary"`
	History     Slice[[]apiclient.HealthEvent] `json:"history"`
}

// HealthView owns the selected period and category filter. The summary
// depends on the period only; the history on both.
type HealthView struct {
	api       HealthAPI
	patientID int64
	timeout   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	period   period.Period
	rng      period.Range
	category string
	loaded   bool
	summary  Slice[*apiclient.Overview]
	history  Slice[[]apiclient.HealthEvent]
}

func NewHealthView(api HealthAPI, patientID int64, timeout time.Duration) *HealthView {
	return &HealthView{
		api:       api,
		patientID: patientID,
		timeout:   timeout,
		now:       time.Now,
		period:    period.Week,
		category:  health.TokenAll,
	}
}

func (v *HealthView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Select applies a period and category filter, reloading only what changed.
// An unknown category falls back to all.
func (v *HealthView) Select(ctx context.Context, p period.Period, rng period.Range, category string) error {
	if _, err := period.Resolve(p, v.now(), rng); err != nil {
		return err
	}
	if p != period.Custom {
		rng = period.Range{}
	}
	if _, ok := health.NameForToken(category); !ok {
		category = health.TokenAll
	}

	v.mu.Lock()
	periodChanged := p != v.period || rng != v.rng
	categoryChanged := category != v.category
	v.period, v.rng, v.category = p, rng, category
	first := !v.loaded
	v.mu.Unlock()

	switch {
	case first || periodChanged:
		v.load(ctx, true)
	case categoryChanged:
		v.load(ctx, false)
	}
	return nil
}

// Refresh reloads both slices.
func (v *HealthView) Refresh(ctx context.Context) {
	v.load(ctx, true)
}

func (v *HealthView) load(ctx context.Context, withSummary bool) {
	v.mu.Lock()
	p, rng, category := v.period, v.rng, v.category
	histGen := v.history.begin()
	var sumGen uint64
	if withSummary || !v.loaded {
		withSummary = true
		sumGen = v.summary.begin()
	}
	v.loaded = true
	v.mu.Unlock()

	ctx, cancel := withTimeout(ctx, v.timeout)
	defer cancel()

	var wg conc.WaitGroup
	if withSummary {
		wg.Go(func() {
			o, err := v.api.HealthSummary(ctx, v.patientID, p, rng)
			settle(&v.mu, &v.summary, sumGen, o, err)
		})
	}
	wg.Go(func() {
		events, err := v.api.HealthHistory(ctx, v.patientID, p, rng, category)
		settle(&v.mu, &v.history, histGen, events, err)
	})
	wg.Wait()
}

func (v *HealthView) Snapshot() HealthState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return HealthState{
		Period:      v.period,
		PeriodLabel: v.period.Label(),
		Range:       v.rng,
		Category:    v.category,
		Summary:     v.summary,
		History:     v.history,
	}
}

// ErrEventNotLoaded is returned when an edit names an event the loaded
// history does not hold.
var ErrEventNotLoaded = &apiclient.Error{Kind: apiclient.KindValidation, Message: "El evento ya no está en el historial, recargue la página"}

// event finds id in the loaded history.
func (v *HealthView) event(id int64) (apiclient.HealthEvent, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, e := range v.history.Data {
		if e.ID == id {
			return e, true
		}
	}
	return apiclient.HealthEvent{}, false
}

// UpdateEvent edits a health event and reloads the view. The category sent
// along with the edit is the one the backend reported for the event, so
// expense rows stay read-only whatever the form carried.
func (v *HealthView) UpdateEvent(ctx context.Context, id int64, value string, rating int) (*health.HistoryItem, error) {
	ev, ok := v.event(id)
	if !ok {
		return nil, ErrEventNotLoaded
	}
	cctx, cancel := withTimeout(ctx, v.timeout)
	item, err := v.api.UpdateHealthEvent(cctx, id, apiclient.HealthEventEdit{
		CategoryName: ev.CategoryName,
		Value:        value,
		Rating:       rating,
	})
	cancel()
	if err != nil {
		return nil, err
	}
	v.Refresh(ctx)
	return item, nil
}

// Trend fetches a metric series for the selected period.
func (v *HealthView) Trend(ctx context.Context, metric string) (*health.Metrics, error) {
	v.mu.Lock()
	p, rng := v.period, v.rng
	v.mu.Unlock()

	ctx, cancel := withTimeout(ctx, v.timeout)
	defer cancel()
	return v.api.HealthMetrics(ctx, v.patientID, metric, p, rng)
}
