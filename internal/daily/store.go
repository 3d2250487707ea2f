// internal/daily/store.go
//
// Daily challenge results (daily_results table): one row per player per day.
// Losses are recorded too so the day is locked, but only wins are ranked,
// by fewest shots, then by time.

package daily

import (
	"context"
	"database/sql"
)

// Result is a finished daily match.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Seed      int64  `json:"seed"`
	Won       bool   `json:"won"`
	Shots     int    `json:"shots"`
	ElapsedMs int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records r unless the player already has a result that day.
// It reports whether a row was written.
func (s *Store) InsertResult(ctx context.Context, r Result) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, seed, won, shots, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`, r.UserID, r.Date, r.Seed, r.Won, r.Shots, r.ElapsedMs,
	)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// LBRow is one leaderboard line. Username is empty for guests, whose
// IDs are cookie values and never leave the server.
type LBRow struct {
	UserID    string `json:"-"`
	Username  string `json:"username,omitempty"`
	Shots     int    `json:"shots"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the best results for date.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username,''), d.shots, d.elapsed_ms
		 FROM daily_results d LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.date=? AND d.won=1
		 ORDER BY d.shots ASC, d.elapsed_ms ASC, d.created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Shots, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
