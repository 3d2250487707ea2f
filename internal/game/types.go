// internal/game/types.go
//
// Core type definitions for the Battleship rules engine.
// Defines:
//   - Coord: a 0-based (row, col) grid position.
//   - CellState: per-cell board state (empty/ship/miss/hit).
//   - Direction: one of the four cardinal directions a ship extends in.
//   - ShipKind: tagged ship variant with its size table.
//   - Side, Phase, Outcome: turn owner, match phase and shot result.
//
// Coordinates are 0-based everywhere: rows and columns run 0..9.

package game

import "fmt"

// BoardSize is the width and height of every board.
const BoardSize = 10

// Coord is a 0-based grid position.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// InBounds reports whether c lies on a BoardSize x BoardSize grid.
func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// Step returns the coordinate n cells away from c in direction d.
func (c Coord) Step(d Direction, n int) Coord {
	dr, dc := d.Delta()
	return Coord{Row: c.Row + dr*n, Col: c.Col + dc*n}
}

// CellState is the state of a single board cell.
type CellState uint8

const (
	CellEmpty CellState = iota // never shot, no ship
	CellShip                   // ship, not yet shot
	CellMiss                   // shot, was empty
	CellHit                    // shot, was ship
)

func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "empty"
	case CellShip:
		return "ship"
	case CellMiss:
		return "miss"
	case CellHit:
		return "hit"
	default:
		return "unknown"
	}
}

// Shot reports whether the cell has already been fired upon.
func (s CellState) Shot() bool { return s == CellMiss || s == CellHit }

// Direction is the way a ship extends from its anchor cell.
type Direction uint8

const (
	DirUp Direction = iota
	DirRight
	DirDown
	DirLeft
)

// Directions lists every direction in a fixed order.
var Directions = [4]Direction{DirUp, DirRight, DirDown, DirLeft}

// Delta returns the (row, col) step for one cell in direction d.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case DirUp:
		return -1, 0
	case DirRight:
		return 0, 1
	case DirDown:
		return 1, 0
	case DirLeft:
		return 0, -1
	default:
		return 0, 0
	}
}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction { return (d + 2) % 4 }

func (d Direction) Valid() bool { return d <= DirLeft }

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirRight:
		return "right"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	default:
		return "unknown"
	}
}

// ParseDirection maps "up"/"right"/"down"/"left" to a Direction.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// ShipKind is the tagged ship variant. Its size comes from the kind.
type ShipKind uint8

const (
	KindUndefined ShipKind = iota
	KindAircraftCarrier
	KindCruiser
	KindDestroyer
	KindFrigate
)

// Kinds lists every valid kind from largest to smallest.
var Kinds = [4]ShipKind{KindAircraftCarrier, KindCruiser, KindDestroyer, KindFrigate}

func (k ShipKind) Valid() bool { return k >= KindAircraftCarrier && k <= KindFrigate }

// Size is the number of cells a ship of kind k occupies.
func (k ShipKind) Size() int {
	switch k {
	case KindAircraftCarrier:
		return 4
	case KindCruiser:
		return 3
	case KindDestroyer:
		return 2
	case KindFrigate:
		return 1
	default:
		return 0
	}
}

func (k ShipKind) String() string {
	switch k {
	case KindAircraftCarrier:
		return "aircraft_carrier"
	case KindCruiser:
		return "cruiser"
	case KindDestroyer:
		return "destroyer"
	case KindFrigate:
		return "frigate"
	default:
		return "unknown"
	}
}

// ParseShipKind maps a kind name back to a ShipKind.
func ParseShipKind(s string) (ShipKind, error) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return KindUndefined, fmt.Errorf("unknown ship kind %q", s)
}

// Side identifies one of the two players.
type Side uint8

const (
	SideHuman Side = iota
	SideOpponent
)

// Other returns the opposing side.
func (s Side) Other() Side { return 1 - s }

func (s Side) Valid() bool { return s <= SideOpponent }

func (s Side) String() string {
	switch s {
	case SideHuman:
		return "human"
	case SideOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

// Phase is the coarse state of a match.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Outcome is the result of a single shot.
type Outcome uint8

const (
	OutcomeMiss Outcome = iota
	OutcomeHit
	OutcomeSunk
	OutcomeAlreadyShot
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMiss:
		return "miss"
	case OutcomeHit:
		return "hit"
	case OutcomeSunk:
		return "sunk"
	case OutcomeAlreadyShot:
		return "already_shot"
	case OutcomeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Resolved reports whether the shot consumed an attempt (miss, hit or sunk).
func (o Outcome) Resolved() bool { return o <= OutcomeSunk }

// KeepsTurn reports whether the shooter shoots again. Only a miss passes the turn.
func (o Outcome) KeepsTurn() bool { return o != OutcomeMiss }

// MarshalText lets outcomes appear as strings in JSON.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Text encodings used by snapshots and the HTTP API.

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (k ShipKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ShipKind) UnmarshalText(b []byte) error {
	v, err := ParseShipKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "human":
		*s = SideHuman
	case "opponent":
		*s = SideOpponent
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	for _, v := range []Phase{PhaseSetup, PhasePlaying, PhaseFinished} {
		if v.String() == string(b) {
			*p = v
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}
