// internal/game/fleet.go
//
// Fleet placement: the fixed composition, the collision rule shared by manual
// and automatic placement, and the randomized placement search.
//
// Placement search:
//   - All 100 anchor cells are shuffled once.
//   - Kinds are placed largest first.
//   - For each anchor, the four directions are tried in random order; the first
//     direction whose cells are all in bounds and empty wins.
//   - Running out of anchors before a kind's count is met is ErrSetupExhausted.

package game

import (
	"fmt"
	"math/rand"
)

// Composition is a count of ships per kind.
type Composition map[ShipKind]int

// StandardComposition is the fleet every side must field:
// one carrier, two cruisers, three destroyers, four frigates.
func StandardComposition() Composition {
	return Composition{
		KindAircraftCarrier: 1,
		KindCruiser:         2,
		KindDestroyer:       3,
		KindFrigate:         4,
	}
}

// Total returns the number of ships in c.
func (c Composition) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Cells returns the number of cells a fleet of composition c occupies.
func (c Composition) Cells() int {
	n := 0
	for k, v := range c {
		n += k.Size() * v
	}
	return n
}

// Minus returns what remains of c after removing have. Counts never go negative.
func (c Composition) Minus(have Composition) Composition {
	out := Composition{}
	for k, v := range c {
		if left := v - have[k]; left > 0 {
			out[k] = left
		}
	}
	return out
}

// CanPlace reports whether sp fits on b: in bounds and over empty cells only.
func CanPlace(b *Board, sp ShipSpec) bool {
	if !sp.Kind.Valid() || !sp.Direction.Valid() {
		return false
	}
	for _, c := range sp.Cells() {
		if !c.InBounds() || b.At(c) != CellEmpty {
			return false
		}
	}
	return true
}

// TryPlace places sp on b if it fits and returns the new ship.
// The boolean result keeps the placement search free of error values.
func TryPlace(b *Board, sp ShipSpec) (*Ship, bool) {
	if !CanPlace(b, sp) {
		return nil, false
	}
	s := &Ship{spec: sp}
	for _, c := range sp.Cells() {
		b.Cells[c.Row][c.Col] = CellShip
	}
	return s, true
}

// Place is the manual placement path: same rule as TryPlace, but failures
// explain themselves.
func Place(b *Board, sp ShipSpec) (*Ship, error) {
	if _, err := NewShip(sp); err != nil {
		return nil, err
	}
	for _, c := range sp.Cells() {
		if b.At(c) != CellEmpty {
			return nil, fmt.Errorf("%w: %s overlaps another ship at %s", ErrInvalidPlacement, sp, c)
		}
	}
	s, _ := TryPlace(b, sp)
	return s, nil
}

// PlaceFleet randomly places the ships listed in want onto b.
// Ships already on b are respected. On ErrSetupExhausted the ships placed so
// far are still returned, and b keeps them.
func PlaceFleet(b *Board, rng *rand.Rand, want Composition) (Fleet, error) {
	anchors := make([]Coord, 0, BoardSize*BoardSize)
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			anchors = append(anchors, Coord{Row: r, Col: c})
		}
	}
	rng.Shuffle(len(anchors), func(i, j int) { anchors[i], anchors[j] = anchors[j], anchors[i] })

	var fleet Fleet
	for _, kind := range Kinds {
		need := want[kind]
		placed := 0
		for _, a := range anchors {
			if placed == need {
				break
			}
			dirs := Directions
			rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
			for _, d := range dirs {
				if s, ok := TryPlace(b, ShipSpec{Kind: kind, Anchor: a, Direction: d}); ok {
					fleet = append(fleet, s)
					placed++
					break
				}
			}
		}
		if placed < need {
			return fleet, fmt.Errorf("place %s: %d of %d: %w", kind, placed, need, ErrSetupExhausted)
		}
	}
	return fleet, nil
}
