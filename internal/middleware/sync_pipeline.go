package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	applogger "PortfolioAssist/pkg/logger"

	"github.com/sony/gobreaker"
)

const pipelineQueue = "sync_pipeline"

// SyncPipeline sits between sync loggers and external sinks. Submit never
// blocks; a background worker delivers each report to every sink with retries
// and a per-sink circuit breaker.
type SyncPipeline struct {
	sinks   []*breakerSink
	metrics domrepo.Metrics
	logger  *applogger.Logger

	bufSize     int
	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
	timeout     time.Duration
	tripAfter   uint32
	openFor     time.Duration

	bufCh   chan *models.SyncReport
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	started bool
	stopped bool
}

type breakerSink struct {
	sink domrepo.SyncSink
	cb   *gobreaker.CircuitBreaker
}

type PipelineOption func(*SyncPipeline)

// WithBufferSize sets how many reports may wait for delivery.
func WithBufferSize(n int) PipelineOption {
	return func(p *SyncPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithRetry sets delivery attempts per sink and the backoff range between them.
func WithRetry(attempts int, min, max time.Duration) PipelineOption {
	return func(p *SyncPipeline) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
		if min > 0 {
			p.backoffMin = min
		}
		if max >= p.backoffMin {
			p.backoffMax = max
		}
	}
}

// WithWriteTimeout bounds a single sink write.
func WithWriteTimeout(d time.Duration) PipelineOption {
	return func(p *SyncPipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithBreaker opens a sink's breaker after n consecutive failures for the given period.
func WithBreaker(n uint32, openFor time.Duration) PipelineOption {
	return func(p *SyncPipeline) {
		if n > 0 {
			p.tripAfter = n
		}
		if openFor > 0 {
			p.openFor = openFor
		}
	}
}

// WithPipelineLogger sets the logger for delivery failures.
func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *SyncPipeline) { p.logger = l }
}

// NewSyncPipeline creates a pipeline over the given sinks. With no sinks Submit is a no-op.
func NewSyncPipeline(sinks []domrepo.SyncSink, metrics domrepo.Metrics, opts ...PipelineOption) *SyncPipeline {
	p := &SyncPipeline{
		metrics:     metrics,
		logger:      applogger.NewNop(),
		bufSize:     256,
		maxAttempts: 3,
		backoffMin:  100 * time.Millisecond,
		backoffMax:  2 * time.Second,
		timeout:     5 * time.Second,
		tripAfter:   5,
		openFor:     30 * time.Second,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.SyncReport, p.bufSize)

	for _, s := range sinks {
		if s == nil {
			continue
		}
		name := s.Name()
		tripAfter := p.tripAfter
		p.sinks = append(p.sinks, &breakerSink{
			sink: s,
			cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:    "sync_" + name,
				Timeout: p.openFor,
				ReadyToTrip: func(c gobreaker.Counts) bool {
					return c.ConsecutiveFailures >= tripAfter
				},
				OnStateChange: func(n string, from, to gobreaker.State) {
					p.logger.Warn("sync sink breaker state changed",
						applogger.String("sink", n),
						applogger.String("from", from.String()),
						applogger.String("to", to.String()),
					)
				},
			}),
		})
	}
	return p
}

// Enabled reports whether any sink is configured.
func (p *SyncPipeline) Enabled() bool {
	return len(p.sinks) > 0
}

// Submit queues a report for delivery. A full buffer drops the report.
func (p *SyncPipeline) Submit(r *models.SyncReport) {
	if r == nil || !p.Enabled() {
		return
	}
	cp := *r
	select {
	case p.bufCh <- &cp:
		p.metrics.RecordQueueDepth(pipelineQueue, len(p.bufCh))
	default:
		p.metrics.RecordError("sync_pipeline_buffer_full")
	}
}

// Start launches the delivery worker. A stopped pipeline cannot be restarted.
func (p *SyncPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		defer close(p.doneCh)
		for {
			select {
			case <-p.stopCh:
				p.drain(ctx)
				return
			case r := <-p.bufCh:
				p.metrics.RecordQueueDepth(pipelineQueue, len(p.bufCh))
				p.deliver(ctx, r)
			}
		}
	}()
}

// Stop delivers what is already queued (one attempt each) and closes the sinks.
// Only the first call has any effect.
func (p *SyncPipeline) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	started := p.started
	p.started = false
	p.stopped = true
	p.mu.Unlock()

	if started {
		close(p.stopCh)
		<-p.doneCh
	}
	p.metrics.RecordQueueDepth(pipelineQueue, len(p.bufCh))
	for _, s := range p.sinks {
		if err := s.sink.Close(); err != nil {
			p.logger.Warn("close sync sink", applogger.String("sink", s.sink.Name()), applogger.Error(err))
		}
	}
}

func (p *SyncPipeline) drain(ctx context.Context) {
	for {
		select {
		case r := <-p.bufCh:
			for _, s := range p.sinks {
				_ = p.write(ctx, s, r)
			}
		default:
			return
		}
	}
}

func (p *SyncPipeline) deliver(ctx context.Context, r *models.SyncReport) {
	for _, s := range p.sinks {
		start := time.Now()
		backoff := p.backoffMin
		var err error
		for attempt := 1; attempt <= p.maxAttempts; attempt++ {
			if err = p.write(ctx, s, r); err == nil {
				p.metrics.RecordLatency("sync_sink_"+s.sink.Name(), time.Since(start).Seconds())
				break
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				break
			}
			if attempt == p.maxAttempts || !p.sleep(ctx, backoff) {
				break
			}
			backoff *= 2
			if backoff > p.backoffMax {
				backoff = p.backoffMax
			}
		}
		if err != nil {
			p.metrics.RecordError("sink_" + s.sink.Name())
			p.logger.Warn("sync report not delivered",
				applogger.String("sink", s.sink.Name()),
				applogger.String("view_id", r.ViewID),
				applogger.Error(err),
			)
		}
	}
}

func (p *SyncPipeline) write(ctx context.Context, s *breakerSink, r *models.SyncReport) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		wctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return nil, s.sink.Write(wctx, r)
	})
	return err
}

// sleep waits d unless the pipeline stops or ctx ends first.
func (p *SyncPipeline) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-p.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// BreakerState returns the breaker state of the named sink, or "" if unknown.
func (p *SyncPipeline) BreakerState(sink string) string {
	for _, s := range p.sinks {
		if s.sink.Name() == sink {
			return s.cb.State().String()
		}
	}
	return ""
}
