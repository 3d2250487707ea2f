// internal/stats/stats.go
//
// Player statistics and match history in SQLite.
// Responsibilities:
//   - games table: one row per match (owner is a user ID or an anonymous cookie ID).
//   - users counters: games played, wins, losses, streak, shots fired, best win.
//   - Leaderboard across registered players.
//
// All counters are updated in one transaction per finished match.

package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownPlayer is returned when a user ID has no users row.
var ErrUnknownPlayer = errors.New("unknown player")

// Player is the statistics view of a users row.
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	GamesPlayed int    `json:"gamesPlayed"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Streak      int    `json:"streak"`
	ShotsFired  int    `json:"shotsFired"`
	BestShots   *int   `json:"bestShots,omitempty"` // fewest shots in a won match
}

// Game is one row of the games table.
type Game struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	AnonymousID string     `json:"-"`
	PlayerName  string     `json:"playerName"`
	Status      string     `json:"status"` // setup | playing | won | lost
	Shots       int        `json:"shots"`
	DailyDate   string     `json:"dailyDate,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

// Store wraps the stats tables.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// ------------------------------- games -------------------------------------

// StartGame inserts the owner row of a new match. An existing row is kept.
func (s *Store) StartGame(ctx context.Context, g Game) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO games (id, user_id, anonymous_id, player_name, started_at, status, shots, daily_date)
		 VALUES (?,?,?,?,?,?,0,?)`,
		g.ID, nullable(g.UserID), nullable(g.AnonymousID), g.PlayerName,
		time.Now().UTC().Format(time.RFC3339), "setup", nullable(g.DailyDate))
	if err != nil {
		return fmt.Errorf("insert game %s: %w", g.ID, err)
	}
	return nil
}

// MarkPlaying flips a match row to playing once both fleets are set.
func (s *Store) MarkPlaying(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE games SET status='playing' WHERE id=? AND status='setup'`, id)
	return err
}

// FinishGame closes a match row and, for registered players, bumps their
// counters. Finishing an already finished match is a no-op.
func (s *Store) FinishGame(ctx context.Context, id, userID string, won bool, shots int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	status := "lost"
	if won {
		status = "won"
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE games SET status=?, shots=?, finished_at=? WHERE id=? AND finished_at IS NULL`,
		status, shots, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if userID != "" {
		if err := bumpStats(ctx, tx, userID, won, shots); err != nil {
			return fmt.Errorf("bump stats %s: %w", userID, err)
		}
	}
	return tx.Commit()
}

// GamesFor returns a player's recent matches, newest first.
func (s *Store) GamesFor(ctx context.Context, userID string, limit int) ([]Game, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_name, status, shots, COALESCE(daily_date,''), started_at, COALESCE(finished_at,'')
		 FROM games WHERE user_id=? ORDER BY started_at DESC, rowid DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		var g Game
		var started, finished string
		if err := rows.Scan(&g.ID, &g.PlayerName, &g.Status, &g.Shots, &g.DailyDate, &started, &finished); err != nil {
			return nil, err
		}
		g.UserID = userID
		g.StartedAt = parseTime(started)
		if finished != "" {
			t := parseTime(finished)
			g.FinishedAt = &t
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ClaimAnonymous moves a guest's match history onto a user account.
func (s *Store) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// ------------------------------- players -----------------------------------

// Get loads one player's counters.
func (s *Store) Get(ctx context.Context, userID string) (*Player, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, games_played, wins, losses, streak, shots_fired, best_shots
		 FROM users WHERE id=?`, userID)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownPlayer
	}
	return p, err
}

// Leaderboard ranks players by wins, then by best win, then by fewest games.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, games_played, wins, losses, streak, shots_fired, best_shots
		 FROM users WHERE games_played > 0
		 ORDER BY wins DESC, best_shots IS NULL, best_shots ASC, games_played ASC, username ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// bumpStats updates a player's counters for one finished match (within tx).
func bumpStats(ctx context.Context, tx *sql.Tx, userID string, won bool, shots int) error {
	var gp, wins, losses, streak, fired int
	var best sql.NullInt64
	row := tx.QueryRowContext(ctx,
		`SELECT games_played, wins, losses, streak, shots_fired, best_shots FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &losses, &streak, &fired, &best); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUnknownPlayer
		}
		return err
	}
	gp++
	fired += shots
	if won {
		wins++
		streak++
		if !best.Valid || int64(shots) < best.Int64 {
			best = sql.NullInt64{Int64: int64(shots), Valid: true}
		}
	} else {
		losses++
		streak = 0
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET games_played=?, wins=?, losses=?, streak=?, shots_fired=?, best_shots=? WHERE id=?`,
		gp, wins, losses, streak, fired, best, userID)
	return err
}

type scanner interface{ Scan(dest ...any) error }

func scanPlayer(row scanner) (*Player, error) {
	var p Player
	var best sql.NullInt64
	if err := row.Scan(&p.ID, &p.Username, &p.GamesPlayed, &p.Wins, &p.Losses, &p.Streak, &p.ShotsFired, &best); err != nil {
		return nil, err
	}
	if best.Valid {
		n := int(best.Int64)
		p.BestShots = &n
	}
	return &p, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
