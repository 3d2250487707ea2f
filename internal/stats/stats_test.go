package stats_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/assets"
	"github.com/robalobadob/battleship/internal/database"
	"github.com/robalobadob/battleship/internal/stats"
)

func setup(t *testing.T) (*sql.DB, *stats.Store) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations))
	return db, stats.NewStore(db)
}

func addUser(t *testing.T, db *sql.DB, id, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		id, name, "x", time.Now().UTC().Format(time.RFC3339))
	require.NoError(t, err)
}

func TestFinishGameBumpsCounters(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t)
	addUser(t, db, "u1", "alice")

	for i, tc := range []struct {
		won   bool
		shots int
	}{{true, 60}, {true, 45}, {false, 80}, {true, 70}} {
		id := string(rune('a' + i))
		require.NoError(t, st.StartGame(ctx, stats.Game{ID: id, UserID: "u1", PlayerName: "alice"}))
		require.NoError(t, st.MarkPlaying(ctx, id))
		require.NoError(t, st.FinishGame(ctx, id, "u1", tc.won, tc.shots))
	}

	p, err := st.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 4, p.GamesPlayed)
	require.Equal(t, 3, p.Wins)
	require.Equal(t, 1, p.Losses)
	require.Equal(t, 1, p.Streak)
	require.Equal(t, 255, p.ShotsFired)
	require.NotNil(t, p.BestShots)
	require.Equal(t, 45, *p.BestShots)

	games, err := st.GamesFor(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, games, 4)
	for _, g := range games {
		require.NotNil(t, g.FinishedAt)
		require.Contains(t, []string{"won", "lost"}, g.Status)
	}
}

func TestFinishGameTwiceCountsOnce(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t)
	addUser(t, db, "u1", "alice")

	require.NoError(t, st.StartGame(ctx, stats.Game{ID: "g", UserID: "u1"}))
	require.NoError(t, st.FinishGame(ctx, "g", "u1", true, 50))
	require.NoError(t, st.FinishGame(ctx, "g", "u1", true, 50))

	p, err := st.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 1, p.GamesPlayed)
}

func TestGuestGamesAndClaim(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t)
	addUser(t, db, "u2", "bob")

	require.NoError(t, st.StartGame(ctx, stats.Game{ID: "g1", AnonymousID: "anon"}))
	require.NoError(t, st.FinishGame(ctx, "g1", "", false, 30))

	games, err := st.GamesFor(ctx, "u2", 10)
	require.NoError(t, err)
	require.Empty(t, games)

	require.NoError(t, st.ClaimAnonymous(ctx, "anon", "u2"))
	games, err = st.GamesFor(ctx, "u2", 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, "lost", games[0].Status)
	require.Equal(t, 30, games[0].Shots)
}

func TestGetUnknown(t *testing.T) {
	_, st := setup(t)
	_, err := st.Get(context.Background(), "nobody")
	require.ErrorIs(t, err, stats.ErrUnknownPlayer)
}

func TestLeaderboardOrder(t *testing.T) {
	ctx := context.Background()
	db, st := setup(t)
	addUser(t, db, "u1", "alice")
	addUser(t, db, "u2", "bob")
	addUser(t, db, "u3", "carol")
	addUser(t, db, "u4", "idle")

	finish := func(id, user string, won bool, shots int) {
		require.NoError(t, st.StartGame(ctx, stats.Game{ID: id, UserID: user}))
		require.NoError(t, st.FinishGame(ctx, id, user, won, shots))
	}
	finish("a1", "u1", true, 60)
	finish("b1", "u2", true, 40)
	finish("b2", "u2", true, 55)
	finish("c1", "u3", true, 50)

	top, err := st.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 3, "players without games are skipped")
	require.Equal(t, "bob", top[0].Username)
	require.Equal(t, "carol", top[1].Username)
	require.Equal(t, "alice", top[2].Username)
}
