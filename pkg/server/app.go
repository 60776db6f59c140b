package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "PortfolioAssist/internal/middleware"
	"PortfolioAssist/internal/service/ratelimit"
	"PortfolioAssist/internal/view"
	"PortfolioAssist/pkg/config"
	xhttp "PortfolioAssist/pkg/http"
	applogger "PortfolioAssist/pkg/logger"

	"github.com/robfig/cron/v3"
)

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	root       *applogger.Logger
	log        *applogger.Logger
	httpServer *xhttp.Server
	views      *view.Manager
	pipeline   *mid.SyncPipeline
	limiter    *ratelimit.Limiter
	closers    []namedCloser
	cron       *cron.Cron
}

// Option configures App.
type Option func(*App)

// WithHTTPServer sets the HTTP server to run.
func WithHTTPServer(s *xhttp.Server) Option {
	return func(a *App) { a.httpServer = s }
}

// WithViews sets the view session manager ended on shutdown.
func WithViews(m *view.Manager) Option {
	return func(a *App) { a.views = m }
}

// WithSyncPipeline sets the sync sink pipeline.
func WithSyncPipeline(p *mid.SyncPipeline) Option {
	return func(a *App) { a.pipeline = p }
}

// WithRateLimiter sets the limiter whose idle buckets are swept periodically.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(a *App) { a.limiter = l }
}

// WithCloser registers an infrastructure client closed last, in registration order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) { a.closers = append(a.closers, namedCloser{name: name, c: c}) }
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, opts ...Option) *App {
	a := &App{cfg: cfg, root: l, log: l.Component("app")}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts the application and blocks until ctx ends, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	if a.pipeline != nil && a.pipeline.Enabled() {
		a.pipeline.Start(context.Background())
		a.log.Info("sync pipeline started")
	}

	a.cron = cron.New()
	if a.limiter != nil {
		_, _ = a.cron.AddFunc("@every 1m", func() {
			if n := a.limiter.Sweep(); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		})
	}
	a.cron.Start()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("portfolio service started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then views, then the sinks and clients they feed.
func (a *App) shutdown() error {
	timeout := a.httpServer.ShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// hijacked websocket connections are not tracked by the HTTP server
	if a.views != nil {
		if err := a.views.Shutdown(ctx); err != nil {
			a.log.Warn("view shutdown incomplete", applogger.Int("active", a.views.Active()), applogger.Error(err))
		}
	}

	<-a.cron.Stop().Done()

	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	// flush aggregated errors while the producer is still open
	a.root.DetachCollector()

	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
