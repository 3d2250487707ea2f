package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/assets"
	"github.com/robalobadob/battleship/internal/database"
	"github.com/robalobadob/battleship/internal/game"
	"github.com/robalobadob/battleship/internal/session"
	"github.com/robalobadob/battleship/internal/store"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	s := session.New("alice", session.WithSeed(1))
	require.NoError(t, st.Save(ctx, s))
	require.Equal(t, 1, st.Len())

	err := st.Update(ctx, s.ID, func(s *session.Session) error {
		require.NoError(t, s.AutoPlaceFleet(game.SideHuman))
		return s.AutoPlaceFleet(game.SideOpponent)
	})
	require.NoError(t, err)

	require.NoError(t, st.View(ctx, s.ID, func(s *session.Session) error {
		require.Equal(t, game.PhasePlaying, s.Phase())
		return nil
	}))

	require.ErrorIs(t, st.Update(ctx, "missing", func(*session.Session) error { return nil }), store.ErrNotFound)

	sentinel := errors.New("boom")
	require.ErrorIs(t, st.Update(ctx, s.ID, func(*session.Session) error { return sentinel }), sentinel)

	require.NoError(t, st.Delete(ctx, s.ID))
	require.NoError(t, st.Delete(ctx, s.ID))
	require.Equal(t, 0, st.Len())
}

func TestMemoryStoreSerialisesUpdates(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	s := session.New("bob", session.WithSeed(2))
	require.NoError(t, st.Save(ctx, s))

	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Update(ctx, s.ID, func(*session.Session) error {
				count++
				return nil
			})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, count)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	st := store.NewMemoryStore()
	s := session.New("carol", session.WithSeed(3))
	require.NoError(t, st.Save(context.Background(), s))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, st.Update(ctx, s.ID, func(*session.Session) error { return nil }), context.Canceled)
}

func newDB(t *testing.T) *store.SavedGames {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations))
	return store.NewSavedGames(db)
}

func TestSavedGamesRoundTrip(t *testing.T) {
	ctx := context.Background()
	saves := newDB(t)

	s := session.New("dave", session.WithSeed(7))
	require.NoError(t, s.AutoPlaceFleet(game.SideHuman))
	require.NoError(t, s.AutoPlaceFleet(game.SideOpponent))
	_, err := s.Shoot(game.SideHuman, 0, 0)
	require.NoError(t, err)

	require.NoError(t, saves.Save(ctx, "save-1", "owner-a", s.Snapshot()))

	snap, err := saves.Load(ctx, "save-1", "owner-a")
	require.NoError(t, err)
	restored, err := session.Restore(snap)
	require.NoError(t, err)
	require.Equal(t, s.ID, restored.ID)
	require.Equal(t, s.Board(game.SideOpponent), restored.Board(game.SideOpponent))
	require.Equal(t, s.ShotsFired(game.SideHuman), restored.ShotsFired(game.SideHuman))

	_, err = saves.Load(ctx, "save-1", "owner-b")
	require.ErrorIs(t, err, store.ErrNotFound)

	list, err := saves.List(ctx, "owner-a", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "dave", list[0].PlayerName)

	require.ErrorIs(t, saves.Delete(ctx, "save-1", "owner-b"), store.ErrNotFound)
	require.NoError(t, saves.Delete(ctx, "save-1", "owner-a"))
	_, err = saves.Load(ctx, "save-1", "owner-a")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSavedGamesOverwriteKeepsOwner(t *testing.T) {
	ctx := context.Background()
	saves := newDB(t)

	s := session.New("erin", session.WithSeed(8))
	require.NoError(t, saves.Save(ctx, "slot", "owner-a", s.Snapshot()))

	other := session.New("mallory", session.WithSeed(9))
	require.NoError(t, saves.Save(ctx, "slot", "owner-b", other.Snapshot()))

	snap, err := saves.Load(ctx, "slot", "owner-a")
	require.NoError(t, err)
	require.Equal(t, "erin", snap.PlayerName)
}
