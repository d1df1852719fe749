package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/google/uuid"
)

// SnapshotStore keeps saved shows in memory, oldest first per session.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string][]models.Snapshot // sessionID -> snapshots
}

// NewSnapshotStore returns an empty store. Snapshots live as long as the process.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[string][]models.Snapshot),
	}
}

// SaveShow records a copy of sh under a fresh snapshot id. It implements
// show.Saver and never fails.
func (s *SnapshotStore) SaveShow(_ context.Context, sessionID string, sh models.Show) (models.Snapshot, error) {
	snap := models.Snapshot{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Show:      sh.Clone(),
		SavedAt:   time.Now().UTC(),
	}

	// Append keeps the oldest-first order ListSnapshots promises
	s.mu.Lock()
	s.snapshots[sessionID] = append(s.snapshots[sessionID], snap)
	s.mu.Unlock()
	return snap, nil
}

// ListSnapshots returns the session's snapshots, oldest first. Unknown
// sessions have none.
func (s *SnapshotStore) ListSnapshots(_ context.Context, sessionID string) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Copy so callers cannot append into the stored slice
	out := make([]models.Snapshot, len(s.snapshots[sessionID]))
	copy(out, s.snapshots[sessionID])
	return out, nil
}
