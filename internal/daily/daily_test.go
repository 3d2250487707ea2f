package daily_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/assets"
	"github.com/robalobadob/battleship/internal/daily"
	"github.com/robalobadob/battleship/internal/database"
)

func TestSeedIsStablePerDay(t *testing.T) {
	morning := time.Date(2024, 3, 9, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	next := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	require.Equal(t, "2024-03-09", daily.DateKey(morning))
	require.Equal(t, daily.Seed(morning, "salt"), daily.Seed(evening, "salt"))
	require.NotEqual(t, daily.Seed(morning, "salt"), daily.Seed(next, "salt"))
	require.NotEqual(t, daily.Seed(morning, "salt"), daily.Seed(morning, "pepper"))
	require.GreaterOrEqual(t, daily.Seed(morning, "salt"), int64(0))
}

func TestParseDateKey(t *testing.T) {
	_, err := daily.ParseDateKey("2024-02-30")
	require.Error(t, err)
	d, err := daily.ParseDateKey("2024-02-29")
	require.NoError(t, err)
	require.Equal(t, "2024-02-29", daily.DateKey(d))
}

func TestStoreOneResultPerDay(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations))
	st := daily.NewStore(db)

	played, err := st.AlreadyPlayed(ctx, "p1", "2024-03-09")
	require.NoError(t, err)
	require.False(t, played)

	ok, err := st.InsertResult(ctx, daily.Result{UserID: "p1", Date: "2024-03-09", Seed: 1, Won: true, Shots: 55, ElapsedMs: 9000})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = st.InsertResult(ctx, daily.Result{UserID: "p1", Date: "2024-03-09", Seed: 1, Shots: 20, ElapsedMs: 1})
	require.NoError(t, err)
	require.False(t, ok, "second result the same day is ignored")

	_, err = st.InsertResult(ctx, daily.Result{UserID: "p2", Date: "2024-03-09", Seed: 1, Won: true, Shots: 40, ElapsedMs: 20000})
	require.NoError(t, err)
	_, err = st.InsertResult(ctx, daily.Result{UserID: "p3", Date: "2024-03-09", Seed: 1, Won: true, Shots: 40, ElapsedMs: 15000})
	require.NoError(t, err)

	_, err = st.InsertResult(ctx, daily.Result{UserID: "p4", Date: "2024-03-09", Seed: 1, Won: false, Shots: 10, ElapsedMs: 100})
	require.NoError(t, err)
	played, err = st.AlreadyPlayed(ctx, "p4", "2024-03-09")
	require.NoError(t, err)
	require.True(t, played, "a loss locks the day too")

	played, err = st.AlreadyPlayed(ctx, "p1", "2024-03-09")
	require.NoError(t, err)
	require.True(t, played)

	top, err := st.Leaderboard(ctx, "2024-03-09", 10)
	require.NoError(t, err)
	require.Len(t, top, 3, "losses are not ranked")
	require.Equal(t, []string{"p3", "p2", "p1"}, []string{top[0].UserID, top[1].UserID, top[2].UserID})
	require.Equal(t, 55, top[2].Shots)

	empty, err := st.Leaderboard(ctx, "2024-03-10", 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}
