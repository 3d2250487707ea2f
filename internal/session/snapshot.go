// internal/session/snapshot.go
//
// Snapshot is the plain-data form of a Session. It is the only persistence
// contract of the engine: hosts choose how to encode it (the HTTP host stores
// it as JSON in SQLite).
//
// Restore re-validates everything it is given:
//   - fleets are in bounds, non-overlapping and within the standard composition;
//   - every ship cell is ship/hit on its board, hit counts match the board;
//   - shot histories match the miss/hit cells of the opposing board;
//   - phase, turn and winner agree with the fleets.

package session

import (
	"fmt"

	"github.com/robalobadob/battleship/internal/ai"
	"github.com/robalobadob/battleship/internal/game"
)

// SnapshotVersion is bumped when the snapshot layout changes.
const SnapshotVersion = 1

// ShipState is one ship inside a snapshot.
type ShipState struct {
	Kind      game.ShipKind  `json:"kind"`
	Anchor    game.Coord     `json:"anchor"`
	Direction game.Direction `json:"direction"`
	Hits      int            `json:"hits"`
	Sunk      bool           `json:"sunk"`
}

// Snapshot captures a whole match. Index 0 is the human side, 1 the opponent.
type Snapshot struct {
	Version    int             `json:"version"`
	ID         string          `json:"id"`
	PlayerName string          `json:"playerName"`
	Boards     [2]game.Board   `json:"boards"`
	Fleets     [2][]ShipState  `json:"fleets"`
	Shots      [2][]game.Coord `json:"shots"`
	Turn       game.Side       `json:"turn"`
	Phase      game.Phase      `json:"phase"`
	Winner     *game.Side      `json:"winner,omitempty"`
	AI         *ai.State       `json:"ai,omitempty"`
}

// Fleet returns side's ships as plain data.
func (s *Session) Fleet(side game.Side) []ShipState {
	out := make([]ShipState, 0, len(s.fleets[side]))
	for _, sh := range s.fleets[side] {
		out = append(out, ShipState{
			Kind:      sh.Kind(),
			Anchor:    sh.Anchor(),
			Direction: sh.Direction(),
			Hits:      sh.Hits(),
			Sunk:      sh.Sunk(),
		})
	}
	return out
}

// Snapshot copies the full match state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Version:    SnapshotVersion,
		ID:         s.ID,
		PlayerName: s.PlayerName,
		Turn:       s.turn,
		Phase:      s.phase,
	}
	for i := range s.boards {
		side := game.Side(i)
		snap.Boards[i] = *s.boards[i]
		snap.Fleets[i] = s.Fleet(side)
		snap.Shots[i] = s.shots[i].History()
	}
	if s.hasWinner {
		w := s.winner
		snap.Winner = &w
	}
	st := s.targeter.State()
	snap.AI = &st
	return snap
}

// Restore rebuilds a Session from a snapshot. Options apply as in New; the
// snapshot's ID wins over WithID.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: version %d", game.ErrBadSnapshot, snap.Version)
	}
	if !snap.Turn.Valid() {
		return nil, fmt.Errorf("%w: turn %d", game.ErrBadSnapshot, snap.Turn)
	}
	if snap.Phase > game.PhaseFinished {
		return nil, fmt.Errorf("%w: phase %d", game.ErrBadSnapshot, snap.Phase)
	}

	s := New(snap.PlayerName, opts...)
	if snap.ID != "" {
		s.ID = snap.ID
		s.log = s.log.With().Str("session", s.ID).Logger()
	}

	for i := range s.boards {
		side := game.Side(i)
		b := snap.Boards[i]
		if err := validateCells(&b); err != nil {
			return nil, fmt.Errorf("%s board: %w", side, err)
		}
		fleet, err := restoreFleet(&b, snap.Fleets[i])
		if err != nil {
			return nil, fmt.Errorf("%s fleet: %w", side, err)
		}
		s.boards[i] = &b
		s.fleets[i] = fleet
	}
	for i := range s.shots {
		side := game.Side(i)
		rec, err := restoreShots(s.boards[side.Other()], snap.Shots[i])
		if err != nil {
			return nil, fmt.Errorf("%s shots: %w", side, err)
		}
		s.shots[i] = rec
	}

	s.turn, s.phase = snap.Turn, snap.Phase
	if err := s.validatePhase(snap.Winner); err != nil {
		return nil, err
	}

	if snap.AI != nil {
		t, err := ai.Restore(*snap.AI, s.rng)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", game.ErrBadSnapshot, err)
		}
		if err := checkKnowledge(t, s.boards[game.SideHuman]); err != nil {
			return nil, err
		}
		s.targeter = t
	}
	return s, nil
}

// checkKnowledge verifies the targeter only claims cells the opponent has
// actually fired at on the human board.
func checkKnowledge(t *ai.Targeter, human *game.Board) error {
	for r := 0; r < game.BoardSize; r++ {
		for c := 0; c < game.BoardSize; c++ {
			at := game.Coord{Row: r, Col: c}
			k, cell := t.Known(at), human.At(at)
			switch {
			case k == ai.Unknown:
			case !cell.Shot():
				return fmt.Errorf("%w: ai knows unshot cell %s", game.ErrBadSnapshot, at)
			case (k == ai.Hit || k == ai.Sunk) && cell != game.CellHit:
				return fmt.Errorf("%w: ai hit at %s is a miss on the board", game.ErrBadSnapshot, at)
			}
		}
	}
	return nil
}

func validateCells(b *game.Board) error {
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c] > game.CellHit {
				return fmt.Errorf("%w: cell (%d,%d) state %d", game.ErrBadSnapshot, r, c, b.Cells[r][c])
			}
		}
	}
	return nil
}

func restoreFleet(b *game.Board, ships []ShipState) (game.Fleet, error) {
	fleet := make(game.Fleet, 0, len(ships))
	occupied := 0
	for _, st := range ships {
		sh, err := game.RestoreShip(game.ShipSpec{Kind: st.Kind, Anchor: st.Anchor, Direction: st.Direction}, st.Hits)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", game.ErrBadSnapshot, err)
		}
		hit := 0
		for _, c := range sh.Cells() {
			switch b.At(c) {
			case game.CellHit:
				hit++
			case game.CellShip:
			default:
				return nil, fmt.Errorf("%w: %s cell %s is %s on the board", game.ErrBadSnapshot, st.Kind, c, b.At(c))
			}
		}
		if hit != min(st.Hits, sh.Size()) {
			return nil, fmt.Errorf("%w: %s has %d hits but %d hit cells", game.ErrBadSnapshot, st.Kind, st.Hits, hit)
		}
		occupied += sh.Size()
		fleet = append(fleet, sh)
	}
	if err := fleet.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrBadSnapshot, err)
	}
	if extra := fleet.Counts().Minus(game.StandardComposition()); extra.Total() > 0 {
		return nil, fmt.Errorf("%w: fleet exceeds the standard composition", game.ErrBadSnapshot)
	}
	if n := b.Count(game.CellShip) + b.Count(game.CellHit); n != occupied {
		return nil, fmt.Errorf("%w: board has %d ship cells, fleet covers %d", game.ErrBadSnapshot, n, occupied)
	}
	return fleet, nil
}

func restoreShots(target *game.Board, shots []game.Coord) (*game.ShotRecord, error) {
	rec := game.NewShotRecord()
	for _, c := range shots {
		if !c.InBounds() {
			return nil, fmt.Errorf("%w: shot %s out of bounds", game.ErrBadSnapshot, c)
		}
		if !target.At(c).Shot() {
			return nil, fmt.Errorf("%w: shot %s not marked on the board", game.ErrBadSnapshot, c)
		}
		if !rec.Add(c) {
			return nil, fmt.Errorf("%w: duplicate shot %s", game.ErrBadSnapshot, c)
		}
	}
	if n := target.Count(game.CellMiss) + target.Count(game.CellHit); n != rec.Len() {
		return nil, fmt.Errorf("%w: board has %d shot cells, history has %d", game.ErrBadSnapshot, n, rec.Len())
	}
	return rec, nil
}

func (s *Session) validatePhase(winner *game.Side) error {
	complete := s.Remaining(game.SideHuman).Total() == 0 && s.Remaining(game.SideOpponent).Total() == 0
	switch s.phase {
	case game.PhaseSetup:
		if complete {
			return fmt.Errorf("%w: setup with both fleets complete", game.ErrBadSnapshot)
		}
		if winner != nil || s.shots[0].Len() > 0 || s.shots[1].Len() > 0 {
			return fmt.Errorf("%w: shots or winner during setup", game.ErrBadSnapshot)
		}
	case game.PhasePlaying:
		if !complete || winner != nil {
			return fmt.Errorf("%w: playing with incomplete fleets or a winner", game.ErrBadSnapshot)
		}
		if s.fleets[0].AllSunk() || s.fleets[1].AllSunk() {
			return fmt.Errorf("%w: playing with a fleet fully sunk", game.ErrBadSnapshot)
		}
	case game.PhaseFinished:
		if winner == nil || !winner.Valid() {
			return fmt.Errorf("%w: finished without a winner", game.ErrBadSnapshot)
		}
		if !s.fleets[winner.Other()].AllSunk() {
			return fmt.Errorf("%w: winner %s but loser fleet afloat", game.ErrBadSnapshot, *winner)
		}
		s.winner, s.hasWinner = *winner, true
	}
	return nil
}
