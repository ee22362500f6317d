package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/store"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultCapacity is the number of snapshots kept when none is configured.
const DefaultCapacity = 64

// GraphStorage is a bounded in-memory store.GraphStorage. When full, the
// oldest snapshot is evicted to make room.
type GraphStorage struct {
	mu        sync.RWMutex
	capacity  int
	snapshots map[string]store.Snapshot
	order     []string
	now       func() time.Time
}

// NewGraphStorage returns an empty store holding at most capacity
// snapshots. A non-positive capacity selects DefaultCapacity.
func NewGraphStorage(capacity int) *GraphStorage {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &GraphStorage{
		capacity:  capacity,
		snapshots: make(map[string]store.Snapshot),
		now:       time.Now,
	}
}

func (s *GraphStorage) SaveGraph(ctx context.Context, snap store.Snapshot) (store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return store.Snapshot{}, err
	}
	if snap.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("failed to generate snapshot id: %w", err)
		}
		snap.ID = id
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.snapshots[snap.ID]; !exists {
		for len(s.order) >= s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.snapshots, oldest)
			logger.Debug("[Store] Evicted graph snapshot", "id", oldest)
		}
		s.order = append(s.order, snap.ID)
	}
	s.snapshots[snap.ID] = snap

	return snap, nil
}

func (s *GraphStorage) GetGraph(ctx context.Context, id string) (store.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[id]
	if !ok {
		return store.Snapshot{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return snap, nil
}

// ListGraphs returns summaries, newest first.
func (s *GraphStorage) ListGraphs(ctx context.Context) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Summary, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.snapshots[s.order[i]].Summary())
	}
	return out, nil
}

func (s *GraphStorage) DeleteGraph(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snapshots[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	delete(s.snapshots, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
