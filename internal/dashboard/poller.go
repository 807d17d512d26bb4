package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/serena/serena/internal/platform/websocket"
)

const maxConcurrentRefreshes = 4

// Notifier publishes view updates and knows which session topics have an
// open page listening. *websocket.Hub satisfies it.
type Notifier interface {
	websocket.EventPublisher
	HasSubscribers(topic string) bool
}

// Poller refreshes the loaded views of sessions with an open page on a fixed
// interval, and a single session whenever its page becomes visible again.
// The session topic receives an "updated" event only when a refresh changed
// what the view holds.
type Poller struct {
	store    *SessionStore
	interval time.Duration
	notifier Notifier
	logger   zerolog.Logger

	mu       sync.Mutex
	base     context.Context
	stopping bool
	wg       sync.WaitGroup
}

// NewPoller creates a poller. A nil notifier refreshes every loaded session
// and publishes nothing.
func NewPoller(store *SessionStore, interval time.Duration, notifier Notifier, logger zerolog.Logger) *Poller {
	return &Poller{
		store:    store,
		interval: interval,
		notifier: notifier,
		logger:   logger.With().Str("component", "poller").Logger(),
		base:     context.Background(),
	}
}

// Run ticks until ctx is cancelled, then waits for in-flight refreshes.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	p.base = ctx
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.logger.Info().Dur("interval", p.interval).Msg("poller started")

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.stopping = true
			p.mu.Unlock()
			p.wg.Wait()
			p.logger.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick drops idle sessions and refreshes those with an open page.
func (p *Poller) Tick(ctx context.Context) {
	if n := p.store.Sweep(); n > 0 {
		p.logger.Debug().Int("dropped", n).Msg("idle sessions removed")
	}

	workers := pool.New().WithMaxGoroutines(maxConcurrentRefreshes)
	for _, s := range p.store.All() {
		if !p.watched(s.ID) {
			continue
		}
		s := s
		workers.Go(func() {
			p.refresh(ctx, s, "")
		})
	}
	workers.Wait()
}

func (p *Poller) watched(sessionID string) bool {
	return p.notifier == nil || p.notifier.HasSubscribers(websocket.SessionTopic(sessionID))
}

// Visible refreshes one session in the background. view limits the refresh
// to one view; empty refreshes both. It is a no-op once Run is stopping.
func (p *Poller) Visible(sessionID, view string) {
	s, ok := p.store.Get(sessionID)
	if !ok {
		return
	}
	p.mu.Lock()
	ctx := p.base
	if p.stopping || ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.refresh(ctx, s, view)
	}()
}

func (p *Poller) refresh(ctx context.Context, s *Session, view string) {
	if ctx.Err() != nil {
		return
	}
	if (view == "" || view == ViewFinancial) && s.Financial.Loaded() {
		before := s.Financial.Fingerprint()
		s.Financial.Refresh(ctx)
		if s.Financial.Fingerprint() != before {
			p.notify(ctx, s.ID, ViewFinancial)
		}
	}
	if (view == "" || view == ViewHealth) && s.Health.Loaded() {
		before := s.Health.Fingerprint()
		s.Health.Refresh(ctx)
		if s.Health.Fingerprint() != before {
			p.notify(ctx, s.ID, ViewHealth)
		}
	}
}

func (p *Poller) notify(ctx context.Context, sessionID, view string) {
	if p.notifier == nil {
		return
	}
	err := p.notifier.Publish(ctx, websocket.Event{
		Type:  websocket.EventUpdated,
		Topic: websocket.SessionTopic(sessionID),
		View:  view,
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("session", sessionID).Msg("publish update")
	}
}
