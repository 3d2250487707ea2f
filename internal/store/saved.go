// internal/store/saved.go
//
// SavedGames persists match snapshots in SQLite as JSON (saved_games table).
// A save is owned by a user ID or an anonymous cookie ID; only its owner can
// load or list it.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/battleship/internal/session"
)

// SavedGame is one row of saved_games without its payload.
type SavedGame struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"-"`
	PlayerName string    `json:"playerName"`
	SavedAt    time.Time `json:"savedAt"`
}

// SavedGames reads and writes snapshot rows.
type SavedGames struct{ db *sql.DB }

func NewSavedGames(db *sql.DB) *SavedGames { return &SavedGames{db: db} }

// Save upserts snap under id for owner.
func (s *SavedGames) Save(ctx context.Context, id, owner string, snap session.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_games (id, owner_id, player_name, snapshot, saved_at) VALUES (?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET player_name=excluded.player_name, snapshot=excluded.snapshot, saved_at=excluded.saved_at
		 WHERE saved_games.owner_id=excluded.owner_id`,
		id, owner, snap.PlayerName, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot saved under id by owner.
func (s *SavedGames) Load(ctx context.Context, id, owner string) (session.Snapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM saved_games WHERE id=? AND owner_id=?`, id, owner).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return session.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// List returns owner's saves, newest first.
func (s *SavedGames) List(ctx context.Context, owner string, limit int) ([]SavedGame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, player_name, saved_at FROM saved_games
		 WHERE owner_id=? ORDER BY saved_at DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SavedGame{}
	for rows.Next() {
		var g SavedGame
		var at string
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.PlayerName, &at); err != nil {
			return nil, err
		}
		g.SavedAt, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, g)
	}
	return out, rows.Err()
}

// Delete removes a save owned by owner.
func (s *SavedGames) Delete(ctx context.Context, id, owner string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_games WHERE id=? AND owner_id=?`, id, owner)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
