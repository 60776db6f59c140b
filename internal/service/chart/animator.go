package chart

import (
	"time"

	"PortfolioAssist/pkg/util"

	"github.com/jonboulle/clockwork"
)

// Phase is the animation state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnimating
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseAnimating:
		return "animating"
	case PhaseDone:
		return "done"
	default:
		return "idle"
	}
}

const (
	DefaultAnimationDuration = time.Second
	DefaultFrameInterval     = 16 * time.Millisecond
)

// State is a point-in-time view of the animation.
type State struct {
	Phase    Phase
	Progress float64
	Start    time.Time
}

// FrameFunc draws one complete frame at progress.
type FrameFunc func(progress float64) error

// Animator drives a FrameFunc from 0 to 1 over a fixed duration. Progress is
// derived from elapsed time on every tick, never accumulated.
//
// An Animator is owned by a single goroutine: the one that selects on C and
// calls Tick, Restart and Stop.
type Animator struct {
	clock    clockwork.Clock
	duration time.Duration
	interval time.Duration
	draw     FrameFunc

	state  State
	ticker clockwork.Ticker
}

// AnimatorOption configures Animator.
type AnimatorOption func(*Animator)

// WithClock sets the time source.
func WithClock(c clockwork.Clock) AnimatorOption {
	return func(a *Animator) { a.clock = c }
}

// WithDuration sets the length of one animation.
func WithDuration(d time.Duration) AnimatorOption {
	return func(a *Animator) {
		if d >= 0 {
			a.duration = d
		}
	}
}

// WithFrameInterval sets the delay between frames.
func WithFrameInterval(d time.Duration) AnimatorOption {
	return func(a *Animator) {
		if d > 0 {
			a.interval = d
		}
	}
}

// NewAnimator creates an idle animator.
func NewAnimator(draw FrameFunc, opts ...AnimatorOption) *Animator {
	a := &Animator{
		clock:    clockwork.NewRealClock(),
		duration: DefaultAnimationDuration,
		interval: DefaultFrameInterval,
		draw:     draw,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Restart cancels any pending frame and starts over. With reduceMotion the
// final frame is drawn immediately and nothing further is scheduled.
func (a *Animator) Restart(reduceMotion bool) error {
	a.cancel()
	if reduceMotion || a.duration == 0 {
		a.state = State{Phase: PhaseDone, Progress: 1, Start: a.clock.Now()}
		return a.draw(1)
	}
	a.state = State{Phase: PhaseAnimating, Start: a.clock.Now()}
	a.ticker = a.clock.NewTicker(a.interval)
	return nil
}

// Tick draws the frame for the clock's current time, not the time the tick
// was queued. It is a no-op unless animating.
func (a *Animator) Tick() error {
	if a.state.Phase != PhaseAnimating {
		return nil
	}
	elapsed := a.clock.Since(a.state.Start)
	progress := util.Clamp(float64(elapsed)/float64(a.duration), 0, 1)
	a.state.Progress = progress
	if progress >= 1 {
		a.cancel()
		a.state.Phase = PhaseDone
	}
	return a.draw(progress)
}

// C fires when the next frame is due. It is nil when nothing is scheduled.
func (a *Animator) C() <-chan time.Time {
	if a.ticker == nil {
		return nil
	}
	return a.ticker.Chan()
}

// Stop cancels any pending frame and returns to idle.
func (a *Animator) Stop() {
	a.cancel()
	a.state.Phase = PhaseIdle
}

// State returns the current animation state.
func (a *Animator) State() State { return a.state }

func (a *Animator) cancel() {
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
}
