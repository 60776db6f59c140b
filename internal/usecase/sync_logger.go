package usecase

import (
	"fmt"
	"sync"
	"time"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	applogger "PortfolioAssist/pkg/logger"

	"github.com/robfig/cron/v3"
)

// DefaultSyncInterval is the period between background sync runs.
const DefaultSyncInterval = 15 * time.Second

// ReportPublisher forwards sync reports to external sinks without blocking.
type ReportPublisher interface {
	Submit(r *models.SyncReport)
}

// SnapshotSource reads the current portfolio.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// SyncLogger periodically logs portfolio aggregates for one view. It runs
// once on Start and then every interval until Stop.
type SyncLogger struct {
	viewID    string
	source    SnapshotSource
	interval  time.Duration
	logger    *applogger.Logger
	metrics   domrepo.Metrics
	publisher ReportPublisher
	observer  func(models.SyncReport)
	now       func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
	last models.SyncReport
	runs int
}

// SyncOption configures SyncLogger.
type SyncOption func(*SyncLogger)

// WithSyncInterval sets the period between runs. Cron schedules have one-second resolution.
func WithSyncInterval(d time.Duration) SyncOption {
	return func(s *SyncLogger) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSyncPublisher forwards every report to p.
func WithSyncPublisher(p ReportPublisher) SyncOption {
	return func(s *SyncLogger) { s.publisher = p }
}

// WithSyncObserver is called with every report, from the goroutine that ran it.
func WithSyncObserver(fn func(models.SyncReport)) SyncOption {
	return func(s *SyncLogger) { s.observer = fn }
}

// WithSyncViewID tags reports with the owning view.
func WithSyncViewID(id string) SyncOption {
	return func(s *SyncLogger) { s.viewID = id }
}

// WithSyncNow sets the timestamp source for reports.
func WithSyncNow(now func() time.Time) SyncOption {
	return func(s *SyncLogger) { s.now = now }
}

func NewSyncLogger(source SnapshotSource, logger *applogger.Logger, metrics domrepo.Metrics, opts ...SyncOption) *SyncLogger {
	s := &SyncLogger{
		source:   source,
		interval: DefaultSyncInterval,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start runs once immediately and schedules the following runs. Calling it twice is a no-op.
func (s *SyncLogger) Start() {
	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return
	}
	c := cron.New()
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() { s.Run() }))
	s.cron = c
	s.mu.Unlock()

	s.Run()
	c.Start()
}

// Stop cancels the schedule and waits for a running job to finish.
// No report is produced after Stop returns.
func (s *SyncLogger) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Restart runs once immediately and starts the interval over, so a portfolio
// change is reported without waiting for the next tick. It does nothing
// unless the logger is running.
func (s *SyncLogger) Restart() {
	if !s.Running() {
		return
	}
	s.Stop()
	s.Start()
}

// Running reports whether a schedule is active.
func (s *SyncLogger) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// Run computes, logs and forwards one report over the current snapshot.
func (s *SyncLogger) Run() models.SyncReport {
	a := Summarize(s.source.Snapshot())
	r := models.SyncReport{
		ViewID:  s.viewID,
		At:      s.now(),
		Total:   a.Total,
		Count:   a.Count,
		Average: a.Average,
	}

	fields := []applogger.Field{
		applogger.String("view_id", r.ViewID),
		applogger.String("total", a.TotalLabel),
		applogger.Int("count", r.Count),
	}
	if r.Count > 0 {
		fields = append(fields, applogger.String("average", fmt.Sprintf("$%.2f", r.Average)))
	}
	s.logger.Info("background sync", fields...)

	s.metrics.RecordSyncRun()
	s.metrics.RecordPortfolio(r.Total, r.Count, r.Average)
	if s.publisher != nil {
		s.publisher.Submit(&r)
	}

	s.mu.Lock()
	s.last = r
	s.runs++
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(r)
	}
	return r
}

// Last returns the most recent report and how many runs have happened.
func (s *SyncLogger) Last() (models.SyncReport, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.runs
}
