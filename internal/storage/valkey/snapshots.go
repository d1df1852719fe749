package valkey

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
	"go.uber.org/zap"
)

// SnapshotStore persists saved shows in Valkey, one list per session.
type SnapshotStore struct {
	client valkey.Client
	prefix string // Namespace for every key this store writes
	log    *zap.SugaredLogger
}

// NewSnapshotStore connects to the Valkey server at addr. Keys are written as
// "<prefix>:show:<sessionID>:snapshots".
func NewSnapshotStore(addr, prefix string, log *zap.SugaredLogger) (*SnapshotStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to valkey at %s: %w", addr, err)
	}
	log.Infof("Connected to Valkey at %s for show snapshots", addr)
	return NewSnapshotStoreWithClient(client, prefix, log), nil
}

// NewSnapshotStoreWithClient wraps an existing client.
func NewSnapshotStoreWithClient(client valkey.Client, prefix string, log *zap.SugaredLogger) *SnapshotStore {
	return &SnapshotStore{client: client, prefix: prefix, log: log}
}

func (s *SnapshotStore) key(sessionID string) string {
	return fmt.Sprintf("%s:show:%s:snapshots", s.prefix, sessionID)
}

// SaveShow appends the show to the session's list as a JSON snapshot.
func (s *SnapshotStore) SaveShow(ctx context.Context, sessionID string, sh models.Show) (models.Snapshot, error) {
	snap := models.Snapshot{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Show:      sh.Clone(),
		SavedAt:   time.Now().UTC(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}

	// RPUSH keeps the list oldest first
	cmd := s.client.B().Rpush().Key(s.key(sessionID)).Element(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return models.Snapshot{}, fmt.Errorf("push snapshot for session %s: %w", sessionID, err)
	}

	s.log.Infof("Saved snapshot %s for session %s (%d scenes, %d transitions)",
		snap.ID, sessionID, len(sh.Scenes), len(sh.Transitions))
	return snap, nil
}

// ListSnapshots reads the whole list back. Entries that no longer decode are
// logged and skipped rather than failing the listing.
func (s *SnapshotStore) ListSnapshots(ctx context.Context, sessionID string) ([]models.Snapshot, error) {
	cmd := s.client.B().Lrange().Key(s.key(sessionID)).Start(0).Stop(-1).Build()
	items, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list snapshots for session %s: %w", sessionID, err)
	}

	snaps := make([]models.Snapshot, 0, len(items))
	for _, item := range items {
		var snap models.Snapshot
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			s.log.Warnf("Skipping unreadable snapshot for session %s: %v", sessionID, err)
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Close closes the Valkey client.
func (s *SnapshotStore) Close() {
	s.client.Close()
}
