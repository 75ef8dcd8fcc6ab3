package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultHistory = 8

// MemoryStore keeps the most recent snapshots in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []Snapshot
	history   int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{history: defaultHistory}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save appends snap, dropping the oldest snapshot beyond the history limit.
func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) (err error) {
	started := time.Now()
	defer func() { observe("save", started, err) }()
	if snap.Table == nil {
		return ErrNilTable
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snap)
	if over := len(s.snapshots) - s.history; over > 0 {
		s.snapshots = append([]Snapshot(nil), s.snapshots[over:]...)
	}
	return nil
}

// Latest returns the last saved snapshot.
func (s *MemoryStore) Latest(ctx context.Context) (Snapshot, error) {
	started := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snapshots) == 0 {
		observe("latest", started, ErrNotFound)
		return Snapshot{}, ErrNotFound
	}
	observe("latest", started, nil)
	return s.snapshots[len(s.snapshots)-1], nil
}

// Len returns the number of retained snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}
