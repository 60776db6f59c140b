package view

import (
	"context"
	"fmt"

	"PortfolioAssist/internal/domain/models"
	domrepo "PortfolioAssist/internal/domain/repository"
	"PortfolioAssist/internal/service/chart"
	"PortfolioAssist/internal/service/network"
	"PortfolioAssist/internal/usecase"
	applogger "PortfolioAssist/pkg/logger"
)

// Outbox delivers messages to one connected page. Send is only called from
// the session loop.
type Outbox interface {
	Send(msg models.ViewMessage) error
}

// Session is one mounted page. Every draw and every Send happens on the
// goroutine running Run.
type Session struct {
	id       string
	store    domrepo.PortfolioStore
	renderer *chart.Renderer
	advisor  *network.Advisor
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	out      Outbox
	anim     *chart.Animator
	sync     *usecase.SyncLogger
	syncCh   chan models.SyncReport
	snap     models.Snapshot
	reduce   bool
}

// ID returns the session id used in logs and sync reports.
func (s *Session) ID() string { return s.id }

// Run mounts the view, serves it until ctx ends or in is closed, then
// unmounts. It returns the first write or render error.
func (s *Session) Run(ctx context.Context, in <-chan *models.NetworkSignal) (err error) {
	changes, unsubscribe := s.store.Subscribe()
	s.metrics.ViewOpened()
	s.logger.Info("view mounted")
	defer func() {
		s.anim.Stop()
		s.sync.Stop()
		unsubscribe()
		s.metrics.ViewClosed()
		s.logger.Info("view unmounted", applogger.Error(err))
	}()

	advice := s.advisor.Current()
	s.reduce = advice.ReduceMotion()
	if err := s.send(models.MessageNetwork, advice); err != nil {
		return err
	}
	if err := s.publishSnapshot(); err != nil {
		return err
	}
	s.sync.Start()
	if err := s.restart(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-changes:
			if err := s.publishSnapshot(); err != nil {
				return err
			}
			s.sync.Restart()
			if err := s.restart(); err != nil {
				return err
			}

		case sig, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.observe(sig); err != nil {
				return err
			}

		case r := <-s.syncCh:
			if err := s.send(models.MessageSync, r); err != nil {
				return err
			}

		case <-s.anim.C():
			if err := s.anim.Tick(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) observe(sig *models.NetworkSignal) error {
	advice, changed := s.advisor.Observe(sig)
	if !changed {
		return nil
	}
	if err := s.send(models.MessageNetwork, advice); err != nil {
		return err
	}
	if reduce := advice.ReduceMotion(); reduce != s.reduce {
		s.reduce = reduce
		s.logger.Debug("motion preference changed",
			applogger.String("connection", advice.ConnectionType),
			applogger.Bool("reduce_motion", reduce),
		)
		return s.restart()
	}
	return nil
}

func (s *Session) publishSnapshot() error {
	s.snap = s.store.Snapshot()
	return s.send(models.MessageSnapshot, usecase.Summarize(s.snap))
}

func (s *Session) restart() error {
	s.metrics.RecordAnimationRestart(s.reduce)
	return s.anim.Restart(s.reduce)
}

// drawFrame is the animator's FrameFunc.
func (s *Session) drawFrame(progress float64) error {
	b, err := s.renderer.Render(chart.FormatSVG, s.snap.Entries, progress, 0, 0)
	if err != nil {
		s.metrics.RecordError("render_svg")
		return fmt.Errorf("render frame: %w", err)
	}
	s.metrics.RecordFrame(string(chart.FormatSVG))
	return s.send(models.MessageFrame, models.Frame{Progress: progress, SVG: string(b)})
}

func (s *Session) send(kind string, data interface{}) error {
	if err := s.out.Send(models.ViewMessage{Type: kind, Data: data}); err != nil {
		return fmt.Errorf("send %s: %w", kind, err)
	}
	return nil
}

// onSync runs on the sync logger's goroutine; the loop picks the report up.
func (s *Session) onSync(r models.SyncReport) {
	select {
	case s.syncCh <- r:
	default:
		// the loop has not consumed the previous report yet; keep the newer one
		select {
		case <-s.syncCh:
		default:
		}
		select {
		case s.syncCh <- r:
		default:
		}
	}
}
