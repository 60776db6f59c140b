package repository

import (
	"sync"

	"PortfolioAssist/internal/domain/models"
	"PortfolioAssist/internal/domain/repository"
)

// MemoryPortfolioStore keeps the portfolio in process memory.
type MemoryPortfolioStore struct {
	mu      sync.RWMutex
	entries []models.Investment
	version uint64

	subMu  sync.Mutex
	nextID int
	subs   map[int]chan struct{}
}

// NewMemoryPortfolioStore creates an empty store.
func NewMemoryPortfolioStore() *MemoryPortfolioStore {
	return &MemoryPortfolioStore{subs: make(map[int]chan struct{})}
}

var _ repository.PortfolioStore = (*MemoryPortfolioStore)(nil)

// Add appends entry and returns the resulting snapshot.
func (s *MemoryPortfolioStore) Add(entry models.Investment) models.Snapshot {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify()
	return snap
}

// Clear removes every entry.
func (s *MemoryPortfolioStore) Clear() models.Snapshot {
	s.mu.Lock()
	s.entries = nil
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify()
	return snap
}

// Snapshot returns a copy of the current entries with their total.
func (s *MemoryPortfolioStore) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Version increments on every mutation.
func (s *MemoryPortfolioStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers for change signals. The returned func unsubscribes and is safe to call twice.
func (s *MemoryPortfolioStore) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *MemoryPortfolioStore) snapshotLocked() models.Snapshot {
	entries := make([]models.Investment, len(s.entries))
	copy(entries, s.entries)
	return models.Snapshot{Entries: entries, Version: s.version}
}

// notify never blocks; a pending signal already covers the new change.
func (s *MemoryPortfolioStore) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
