package view

import (
	"context"
	"sync"
	"time"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/internal/service/network"
	"PortfolioAssist/internal/usecase"
	applogger "PortfolioAssist/pkg/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Manager creates sessions over shared dependencies and tracks the live ones
// so shutdown can end them.
type Manager struct {
	store     domrepo.PortfolioStore
	renderer  *chart.Renderer
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	publisher usecase.ReportPublisher

	clock         clockwork.Clock
	duration      time.Duration
	frameInterval time.Duration
	syncInterval  time.Duration
	slowTypes     []string

	mu       sync.Mutex
	sessions map[string]context.CancelFunc
	closed   bool
	wg       sync.WaitGroup
}

// Option configures Manager.
type Option func(*Manager)

// WithClock sets the animation clock.
func WithClock(c clockwork.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithAnimation sets animation duration and frame interval.
func WithAnimation(duration, frameInterval time.Duration) Option {
	return func(m *Manager) {
		if duration >= 0 {
			m.duration = duration
		}
		if frameInterval > 0 {
			m.frameInterval = frameInterval
		}
	}
}

// WithSyncInterval sets the per-view background sync period.
func WithSyncInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.syncInterval = d
		}
	}
}

// WithSlowTypes sets the effective connection types treated as slow.
func WithSlowTypes(types []string) Option {
	return func(m *Manager) { m.slowTypes = types }
}

// WithPublisher forwards every sync report to p.
func WithPublisher(p usecase.ReportPublisher) Option {
	return func(m *Manager) { m.publisher = p }
}

func NewManager(store domrepo.PortfolioStore, renderer *chart.Renderer, metrics domrepo.Metrics, logger *applogger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		renderer:      renderer,
		metrics:       metrics,
		logger:        logger.Component("view"),
		clock:         clockwork.NewRealClock(),
		duration:      chart.DefaultAnimationDuration,
		frameInterval: chart.DefaultFrameInterval,
		syncInterval:  usecase.DefaultSyncInterval,
		sessions:      make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewSession builds an unmounted session. initial is the connection signal
// known at connect time and may be nil.
func (m *Manager) NewSession(out Outbox, initial *models.NetworkSignal) *Session {
	id := uuid.NewString()
	advisor := network.NewAdvisor(network.WithSlowTypes(m.slowTypes...))
	advisor.Observe(initial)

	s := &Session{
		id:       id,
		store:    m.store,
		renderer: m.renderer,
		advisor:  advisor,
		metrics:  m.metrics,
		logger:   m.logger.With(applogger.String("view_id", id)),
		out:      out,
		syncCh:   make(chan models.SyncReport, 1),
	}
	s.anim = chart.NewAnimator(s.drawFrame,
		chart.WithClock(m.clock),
		chart.WithDuration(m.duration),
		chart.WithFrameInterval(m.frameInterval),
	)

	syncOpts := []usecase.SyncOption{
		usecase.WithSyncInterval(m.syncInterval),
		usecase.WithSyncViewID(id),
		usecase.WithSyncObserver(s.onSync),
	}
	if m.publisher != nil {
		syncOpts = append(syncOpts, usecase.WithSyncPublisher(m.publisher))
	}
	s.sync = usecase.NewSyncLogger(m.store, s.logger, m.metrics, syncOpts...)
	return s
}

// Serve runs s until ctx ends, in closes, a write fails, or Shutdown is called.
func (m *Manager) Serve(ctx context.Context, s *Session, in <-chan *models.NetworkSignal) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.sessions[s.id] = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.sessions, s.id)
		m.mu.Unlock()
		m.wg.Done()
	}()
	return s.Run(ctx, in)
}

// Active returns the number of mounted sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown unmounts every session and refuses new ones. It waits until all
// sessions have returned or ctx ends.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	for _, cancel := range m.sessions {
		cancel()
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
