package ai

import (
	"fmt"
	"math/rand"

	"github.com/robalobadob/battleship/internal/game"
)

// State is a plain copy of a Targeter's memory, suitable for a snapshot.
type State struct {
	Mode      Mode                                      `json:"mode"`
	Stack     []game.Coord                              `json:"stack,omitempty"`
	FirstHit  *game.Coord                               `json:"firstHit,omitempty"`
	Direction *game.Direction                           `json:"direction,omitempty"`
	Pursued   []game.Coord                              `json:"pursued,omitempty"`
	Known     [game.BoardSize][game.BoardSize]Knowledge `json:"known"`
}

// State exports the targeter's memory.
func (t *Targeter) State() State {
	st := State{
		Mode:    t.mode,
		Stack:   append([]game.Coord(nil), t.stack...),
		Pursued: append([]game.Coord(nil), t.pursued...),
		Known:   t.known,
	}
	if t.hasFirst {
		f := t.first
		st.FirstHit = &f
	}
	if t.hasDir {
		d := t.dir
		st.Direction = &d
	}
	return st
}

// Restore rebuilds a targeter from an exported State.
func Restore(st State, rng *rand.Rand) (*Targeter, error) {
	if st.Mode > ModeTarget {
		return nil, fmt.Errorf("ai state: unknown mode %d", st.Mode)
	}
	if st.Direction != nil && !st.Direction.Valid() {
		return nil, fmt.Errorf("ai state: unknown direction %d", *st.Direction)
	}
	for r := range st.Known {
		for c := range st.Known[r] {
			if st.Known[r][c] > Sunk {
				return nil, fmt.Errorf("ai state: bad knowledge %d at (%d,%d)", st.Known[r][c], r, c)
			}
		}
	}
	if st.FirstHit != nil && !st.FirstHit.InBounds() {
		return nil, fmt.Errorf("ai state: first hit %s off the board", *st.FirstHit)
	}
	for _, c := range st.Stack {
		if !c.InBounds() {
			return nil, fmt.Errorf("ai state: candidate %s off the board", c)
		}
	}
	for _, c := range st.Pursued {
		if !c.InBounds() {
			return nil, fmt.Errorf("ai state: pursued %s off the board", c)
		}
		if st.Known[c.Row][c.Col] != Hit {
			return nil, fmt.Errorf("ai state: pursued %s is not a known hit", c)
		}
	}
	t := &Targeter{
		rng:     rng,
		mode:    st.Mode,
		stack:   append([]game.Coord(nil), st.Stack...),
		pursued: append([]game.Coord(nil), st.Pursued...),
		known:   st.Known,
	}
	if st.FirstHit != nil {
		t.first, t.hasFirst = *st.FirstHit, true
	}
	if st.Direction != nil {
		t.dir, t.hasDir = *st.Direction, true
	}
	return t, nil
}
