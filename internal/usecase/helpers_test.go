package usecase

import (
	"sync"

	"PortfolioAssist/internal/domain/models"
)

type countingMetrics struct {
	mu        sync.Mutex
	added     int
	syncRuns  int
	lastTotal float64
	lastCount int
}

func (m *countingMetrics) RecordPortfolio(total float64, count int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTotal, m.lastCount = total, count
}

func (m *countingMetrics) RecordInvestmentAdded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added++
}

func (m *countingMetrics) RecordSyncRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncRuns++
}

func (m *countingMetrics) RecordValidationRejected(string) {}
func (m *countingMetrics) RecordFrame(string) {}
func (m *countingMetrics) RecordAnimationRestart(bool) {}
func (m *countingMetrics) RecordError(string) {}
func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordQueueDepth(string, int) {}
func (m *countingMetrics) ViewOpened() {}
func (m *countingMetrics) ViewClosed() {}

type staticSource struct {
	mu   sync.Mutex
	snap models.Snapshot
}

func (s *staticSource) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *staticSource) set(entries ...models.Investment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = models.Snapshot{Entries: entries}
}

type capturePublisher struct {
	mu      sync.Mutex
	reports []models.SyncReport
}

func (p *capturePublisher) Submit(r *models.SyncReport) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, *r)
}
