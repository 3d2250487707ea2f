// internal/game/ship.go
//
// Ship is one vessel of a fleet: kind, anchor and direction are fixed at
// construction, only the hit counter changes afterwards. Sunk ships stay in
// their fleet.

package game

import "fmt"

// ShipSpec describes a placement request: which kind goes where.
type ShipSpec struct {
	Kind      ShipKind  `json:"kind"`
	Anchor    Coord     `json:"anchor"`
	Direction Direction `json:"direction"`
}

func (sp ShipSpec) String() string {
	return fmt.Sprintf("%s at %s %s", sp.Kind, sp.Anchor, sp.Direction)
}

// Cells returns the cells the spec would occupy, anchor first.
// The result may contain out-of-range coordinates.
func (sp ShipSpec) Cells() []Coord {
	n := sp.Kind.Size()
	out := make([]Coord, n)
	for i := 0; i < n; i++ {
		out[i] = sp.Anchor.Step(sp.Direction, i)
	}
	return out
}

// Ship is a placed vessel.
type Ship struct {
	spec ShipSpec
	hits int
}

// NewShip validates the spec shape (kind, direction, bounds) and builds a ship.
// It does not check for overlap; that needs a board.
func NewShip(sp ShipSpec) (*Ship, error) {
	if !sp.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown ship kind %d", ErrInvalidPlacement, sp.Kind)
	}
	if !sp.Direction.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %d", ErrInvalidPlacement, sp.Direction)
	}
	for _, c := range sp.Cells() {
		if !c.InBounds() {
			return nil, fmt.Errorf("%w: %s leaves the grid at %s", ErrInvalidPlacement, sp, c)
		}
	}
	return &Ship{spec: sp}, nil
}

func (s *Ship) Spec() ShipSpec { return s.spec }
func (s *Ship) Kind() ShipKind { return s.spec.Kind }
func (s *Ship) Size() int { return s.spec.Kind.Size() }
func (s *Ship) Anchor() Coord { return s.spec.Anchor }
func (s *Ship) Direction() Direction { return s.spec.Direction }
func (s *Ship) Hits() int { return s.hits }
func (s *Ship) Cells() []Coord { return s.spec.Cells() }
func (s *Ship) Sunk() bool { return s.hits >= s.Size() }

// RestoreShip rebuilds a ship that has already taken hits.
func RestoreShip(sp ShipSpec, hits int) (*Ship, error) {
	s, err := NewShip(sp)
	if err != nil {
		return nil, err
	}
	if hits < 0 {
		return nil, fmt.Errorf("%w: negative hit count %d", ErrBadSnapshot, hits)
	}
	s.hits = hits
	return s, nil
}

// Occupies reports whether c is one of the ship's cells.
func (s *Ship) Occupies(c Coord) bool {
	for _, sc := range s.Cells() {
		if sc == c {
			return true
		}
	}
	return false
}

// RegisterHit records one hit. Hits past sinking keep counting; Sunk stays true.
func (s *Ship) RegisterHit() { s.hits++ }

// Fleet is the ordered list of one side's ships.
type Fleet []*Ship

// ShipAt returns the ship occupying c, or nil.
func (f Fleet) ShipAt(c Coord) *Ship {
	for _, s := range f {
		if s.Occupies(c) {
			return s
		}
	}
	return nil
}

// AllSunk reports whether the fleet is non-empty and every ship is sunk.
func (f Fleet) AllSunk() bool {
	if len(f) == 0 {
		return false
	}
	for _, s := range f {
		if !s.Sunk() {
			return false
		}
	}
	return true
}

// Afloat counts ships not yet sunk.
func (f Fleet) Afloat() int {
	n := 0
	for _, s := range f {
		if !s.Sunk() {
			n++
		}
	}
	return n
}

// Counts returns how many ships of each kind the fleet holds.
func (f Fleet) Counts() Composition {
	out := Composition{}
	for _, s := range f {
		out[s.Kind()]++
	}
	return out
}

// Validate checks that every ship is in bounds and no two ships share a cell.
func (f Fleet) Validate() error {
	seen := make(map[Coord]bool)
	for _, s := range f {
		for _, c := range s.Cells() {
			if !c.InBounds() {
				return fmt.Errorf("%w: %s out of bounds", ErrInvalidPlacement, s.Spec())
			}
			if seen[c] {
				return fmt.Errorf("%w: duplicated coordinate %s", ErrInvalidPlacement, c)
			}
			seen[c] = true
		}
	}
	return nil
}
