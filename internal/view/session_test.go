package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/internal/repository"
	"PortfolioAssist/internal/service/chart"
	applogger "PortfolioAssist/pkg/logger"
	"PortfolioAssist/pkg/metrics"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameStep = 100 * time.Millisecond

type chanOutbox struct {
	ch  chan models.ViewMessage
	err error
}

func newOutbox() *chanOutbox {
	return &chanOutbox{ch: make(chan models.ViewMessage, 256)}
}

func (o *chanOutbox) Send(msg models.ViewMessage) error {
	if o.err != nil {
		return o.err
	}
	o.ch <- msg
	return nil
}

// next returns the next message, failing the test after a timeout.
func (o *chanOutbox) next(t *testing.T) models.ViewMessage {
	t.Helper()
	select {
	case msg := <-o.ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view message")
		return models.ViewMessage{}
	}
}

func (o *chanOutbox) expectQuiet(t *testing.T) {
	t.Helper()
	select {
	case msg := <-o.ch:
		t.Fatalf("unexpected %s message", msg.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

type fixture struct {
	store   *repository.MemoryPortfolioStore
	clock   *clockwork.FakeClock
	manager *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryPortfolioStore()
	fc := clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	m := NewManager(store,
		chart.NewRenderer(chart.WithSize(200, 200)),
		metrics.NewWithRegistry(prometheus.NewRegistry()),
		applogger.NewNop(),
		WithClock(fc),
		WithAnimation(time.Second, frameStep),
		WithSyncInterval(time.Hour),
	)
	return &fixture{store: store, clock: fc, manager: m}
}

// mount serves a new session and consumes the mount messages.
func (f *fixture) mount(t *testing.T, initial *models.NetworkSignal) (*chanOutbox, chan *models.NetworkSignal, <-chan error, context.CancelFunc) {
	t.Helper()
	out := newOutbox()
	in := make(chan *models.NetworkSignal)
	s := f.manager.NewSession(out, initial)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.manager.Serve(ctx, s, in) }()
	t.Cleanup(cancel)

	assert.Equal(t, models.MessageNetwork, out.next(t).Type)
	assert.Equal(t, models.MessageSnapshot, out.next(t).Type)
	return out, in, done, cancel
}

func (f *fixture) frame(t *testing.T, out *chanOutbox) models.Frame {
	t.Helper()
	f.clock.Advance(frameStep)
	msg := out.next(t)
	require.Equal(t, models.MessageFrame, msg.Type)
	return msg.Data.(models.Frame)
}

// awaitTicker waits until the session loop has scheduled a frame ticker.
func (f *fixture) awaitTicker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
}

func skipSync(t *testing.T, out *chanOutbox) models.SyncReport {
	t.Helper()
	msg := out.next(t)
	require.Equal(t, models.MessageSync, msg.Type)
	return msg.Data.(models.SyncReport)
}

func TestSessionMountSendsNetworkSnapshotAndSync(t *testing.T) {
	f := newFixture(t)
	f.store.Add(models.Investment{Name: "Stocks", Amount: 600})
	f.store.Add(models.Investment{Name: "Bonds", Amount: 400})

	out := newOutbox()
	s := f.manager.NewSession(out, &models.NetworkSignal{EffectiveType: "4G"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.manager.Serve(ctx, s, nil) }()

	msg := out.next(t)
	require.Equal(t, models.MessageNetwork, msg.Type)
	assert.Equal(t, models.NetworkAdvice{ConnectionType: "4g"}, msg.Data)

	msg = out.next(t)
	require.Equal(t, models.MessageSnapshot, msg.Type)
	alloc := msg.Data.(models.Allocation)
	assert.Equal(t, "$1,000", alloc.TotalLabel)
	assert.Equal(t, 2, alloc.Count)
	assert.Equal(t, "60.0%", alloc.Rows[0].PercentLabel)

	r := skipSync(t, out)
	assert.Equal(t, s.ID(), r.ViewID)
	assert.Equal(t, 1000.0, r.Total)
	assert.Equal(t, 500.0, r.Average)

	// the first frame waits for the first tick
	out.expectQuiet(t)
}

func TestSessionAnimatesToCompletion(t *testing.T) {
	f := newFixture(t)
	f.store.Add(models.Investment{Name: "Cash", Amount: 10})
	out, _, _, _ := f.mount(t, nil)
	skipSync(t, out)

	var last models.Frame
	for i := 0; i < 10; i++ {
		last = f.frame(t, out)
		assert.InDelta(t, float64(i+1)/10, last.Progress, 1e-9)
		assert.Contains(t, last.SVG, "<svg")
	}
	assert.Equal(t, 1.0, last.Progress)

	f.clock.Advance(frameStep)
	out.expectQuiet(t)
}

func TestSessionRestartsOnStoreChange(t *testing.T) {
	f := newFixture(t)
	out, _, _, _ := f.mount(t, nil)
	skipSync(t, out)
	for i := 0; i < 10; i++ {
		f.frame(t, out)
	}
	f.clock.Advance(frameStep)
	out.expectQuiet(t)

	f.store.Add(models.Investment{Name: "Gold", Amount: 250})

	msg := out.next(t)
	require.Equal(t, models.MessageSnapshot, msg.Type)
	assert.Equal(t, "$250", msg.Data.(models.Allocation).TotalLabel)

	// the change is synced at once instead of on the next interval
	r := skipSync(t, out)
	assert.Equal(t, 1, r.Count)
	assert.Equal(t, 250.0, r.Total)

	f.awaitTicker(t)
	fr := f.frame(t, out)
	assert.InDelta(t, 0.1, fr.Progress, 1e-9, "animation starts over")
	assert.Contains(t, fr.SVG, "100.0%")
}

func TestSessionReduceMotionFinalizesMidAnimation(t *testing.T) {
	f := newFixture(t)
	f.store.Add(models.Investment{Name: "Stocks", Amount: 1})
	out, in, _, _ := f.mount(t, &models.NetworkSignal{EffectiveType: "4g"})
	skipSync(t, out)

	for i := 0; i < 3; i++ {
		f.frame(t, out)
	}

	in <- &models.NetworkSignal{EffectiveType: "2g"}

	msg := out.next(t)
	require.Equal(t, models.MessageNetwork, msg.Type)
	advice := msg.Data.(models.NetworkAdvice)
	assert.True(t, advice.IsSlowConnection)
	assert.True(t, advice.ReduceMotion())

	msg = out.next(t)
	require.Equal(t, models.MessageFrame, msg.Type)
	assert.Equal(t, 1.0, msg.Data.(models.Frame).Progress)

	f.clock.Advance(frameStep)
	out.expectQuiet(t)
}

func TestSessionIgnoresUnchangedSignal(t *testing.T) {
	f := newFixture(t)
	out, in, _, _ := f.mount(t, &models.NetworkSignal{EffectiveType: "4g"})
	skipSync(t, out)

	in <- &models.NetworkSignal{EffectiveType: "4g"}
	out.expectQuiet(t)
}

func TestSessionReducedMotionDrawsFinalFrameOnMount(t *testing.T) {
	f := newFixture(t)
	out := newOutbox()
	s := f.manager.NewSession(out, &models.NetworkSignal{EffectiveType: "4g", SaveData: true})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.manager.Serve(ctx, s, nil) }()

	msg := out.next(t)
	require.Equal(t, models.MessageNetwork, msg.Type)
	assert.True(t, msg.Data.(models.NetworkAdvice).DataSaverMode)
	assert.Equal(t, models.MessageSnapshot, out.next(t).Type)

	// the final frame is drawn during mount, before the loop forwards sync
	msg = out.next(t)
	require.Equal(t, models.MessageFrame, msg.Type)
	assert.Equal(t, 1.0, msg.Data.(models.Frame).Progress)
	skipSync(t, out)
}

func TestSessionEndsWhenInboundCloses(t *testing.T) {
	f := newFixture(t)
	out, in, done, _ := f.mount(t, nil)
	skipSync(t, out)

	close(in)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
	assert.Equal(t, 0, f.manager.Active())
}

func TestSessionReturnsSendError(t *testing.T) {
	f := newFixture(t)
	out := newOutbox()
	out.err = errors.New("broken pipe")
	s := f.manager.NewSession(out, nil)

	err := f.manager.Serve(context.Background(), s, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send network")
	assert.Equal(t, 0, f.manager.Active())
}

func TestManagerShutdown(t *testing.T) {
	f := newFixture(t)
	out1, _, done1, _ := f.mount(t, nil)
	out2, _, done2, _ := f.mount(t, nil)
	skipSync(t, out1)
	skipSync(t, out2)
	assert.Equal(t, 2, f.manager.Active())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.manager.Shutdown(ctx))
	assert.NoError(t, <-done1)
	assert.NoError(t, <-done2)
	assert.Equal(t, 0, f.manager.Active())

	s := f.manager.NewSession(newOutbox(), nil)
	assert.NoError(t, f.manager.Serve(context.Background(), s, nil), "refuses sessions after shutdown")
	assert.Equal(t, 0, f.manager.Active())
}
