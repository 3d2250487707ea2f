// internal/game/engine.go
//
// Shot resolution for a single shot against one side's board and fleet.
// Responsibilities:
//   - Reject repeats (checked before anything else) and out-of-range shots.
//   - Record the shot, mark the cell miss/hit, credit the hit ship.
//   - Report the outcome; callers apply the turn rule via Outcome.KeepsTurn.
//
// Notes:
//   - AlreadyShot and Invalid never mutate state.
//   - Game over is a property of the target fleet (Fleet.AllSunk).

package game

// ShotRecord is the insertion-only set of cells a side has fired upon,
// with the order they were fired in.
type ShotRecord struct {
	seen    [BoardSize][BoardSize]bool
	history []Coord
}

// NewShotRecord returns an empty record.
func NewShotRecord() *ShotRecord { return &ShotRecord{} }

// Has reports whether c was already fired upon. Out-of-range cells never are.
func (r *ShotRecord) Has(c Coord) bool {
	return c.InBounds() && r.seen[c.Row][c.Col]
}

// Add records c. It reports false when c is out of range or already present.
func (r *ShotRecord) Add(c Coord) bool {
	if !c.InBounds() || r.seen[c.Row][c.Col] {
		return false
	}
	r.seen[c.Row][c.Col] = true
	r.history = append(r.history, c)
	return true
}

// Len is the number of recorded shots.
func (r *ShotRecord) Len() int { return len(r.history) }

// History returns a copy of the shots in firing order.
func (r *ShotRecord) History() []Coord {
	return append([]Coord(nil), r.history...)
}

// ResolveShot fires at (row, col) on board, crediting fleet on a hit.
//
// Order of checks:
//  1. already in record → OutcomeAlreadyShot
//  2. out of bounds     → OutcomeInvalid
//  3. record, then empty → OutcomeMiss; ship → OutcomeHit or OutcomeSunk
//  4. a cell already resolved on the board → OutcomeAlreadyShot, no damage
func ResolveShot(record *ShotRecord, board *Board, fleet Fleet, row, col int) Outcome {
	c := Coord{Row: row, Col: col}
	if record.Has(c) {
		return OutcomeAlreadyShot
	}
	if !c.InBounds() {
		return OutcomeInvalid
	}
	record.Add(c)

	switch board.At(c) {
	case CellShip:
		board.Cells[row][col] = CellHit
		s := fleet.ShipAt(c)
		if s == nil {
			// Board and fleet disagree; treat as a plain hit.
			return OutcomeHit
		}
		s.RegisterHit()
		if s.Sunk() {
			return OutcomeSunk
		}
		return OutcomeHit
	case CellEmpty:
		board.Cells[row][col] = CellMiss
		return OutcomeMiss
	default:
		// Marked on the board but not in record; non-consuming.
		return OutcomeAlreadyShot
	}
}
