package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Vasu1712/scenyx-showtime/internal/models"
	"github.com/Vasu1712/scenyx-showtime/internal/show"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore(nil, zap.NewNop().Sugar())
	sess := store.CreateSession()
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, store.Len())

	var got models.Show
	err := store.Do(sess.ID, func(e *show.Editor) error {
		e.LoadExample()
		got = e.Show()
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got.Scenes, 3)

	assert.True(t, store.DeleteSession(sess.ID))
	assert.False(t, store.DeleteSession(sess.ID))
	err = store.Do(sess.ID, func(*show.Editor) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreDoPropagatesError(t *testing.T) {
	store := NewSessionStore(nil, zap.NewNop().Sugar())
	sess := store.CreateSession()
	boom := errors.New("boom")
	assert.ErrorIs(t, store.Do(sess.ID, func(*show.Editor) error { return boom }), boom)
}

func TestSessionStoreSerializesWriters(t *testing.T) {
	store := NewSessionStore(nil, zap.NewNop().Sugar())
	sess := store.CreateSession()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Do(sess.ID, func(e *show.Editor) error {
				e.AddScene("")
				return nil
			})
		}()
	}
	wg.Wait()

	_ = store.Do(sess.ID, func(e *show.Editor) error {
		s := e.Show()
		assert.Len(t, s.Scenes, 51)
		assert.Len(t, s.Transitions, 50)
		assert.Empty(t, show.Audit(s))
		return nil
	})
}

func TestSessionsSaveThroughSnapshotStore(t *testing.T) {
	snaps := NewSnapshotStore()
	store := NewSessionStore(snaps, zap.NewNop().Sugar())
	sess := store.CreateSession()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := store.Do(sess.ID, func(e *show.Editor) error {
			e.AddScene("")
			_, err := e.Save(ctx)
			return err
		})
		require.NoError(t, err)
	}

	list, err := snaps.ListSnapshots(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Show.Scenes, 2)
	assert.Len(t, list[1].Show.Scenes, 3)
	assert.Equal(t, sess.ID, list[1].SessionID)

	other, err := snaps.ListSnapshots(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, other)
}
