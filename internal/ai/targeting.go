// internal/ai/targeting.go
//
// Targeter is the opponent's hunt/target shot selector.
//
// Hunt mode:
//   - Candidates are untried cells with (row+col) even. Every ship of size >= 2
//     covers at least one of them, and the search space is halved.
//   - When no such cell is left, any untried cell is a candidate.
//   - The pick is uniform over candidates (row-major order, so a seeded source
//     gives a reproducible sequence).
//
// Target mode:
//   - Entered on a hit that did not sink. Candidates live on a LIFO stack.
//   - First hit on a ship pushes its untried orthogonal neighbours.
//   - Later hits on the same axis push the next untried cell past the latest
//     hit and the next untried cell past the first hit, the other way.
//   - A sinking hit marks the run of hits through it as sunk, clears the
//     target state and returns to hunt mode.
//
// The Targeter only learns what Register tells it and what NextShot's view
// shows as already shot; it never looks at unshot ship cells.

package ai

import (
	"math/rand"

	"github.com/robalobadob/battleship/internal/game"
)

// Mode is the targeter's search phase.
type Mode uint8

const (
	ModeHunt Mode = iota
	ModeTarget
)

func (m Mode) String() string {
	if m == ModeTarget {
		return "target"
	}
	return "hunt"
}

// Knowledge is what the targeter has learned about a cell.
type Knowledge uint8

const (
	Unknown Knowledge = iota
	Water
	Hit
	Sunk
)

// Targeter holds the hunt/target state for one opponent.
type Targeter struct {
	rng   *rand.Rand
	mode  Mode
	stack []game.Coord

	first    game.Coord
	hasFirst bool
	dir      game.Direction
	hasDir   bool
	pursued  []game.Coord // hits since the last sinking

	known [game.BoardSize][game.BoardSize]Knowledge
}

// New returns a targeter in hunt mode drawing from rng.
func New(rng *rand.Rand) *Targeter {
	return &Targeter{rng: rng}
}

// Reset clears everything learned, as at match start.
func (t *Targeter) Reset() {
	rng := t.rng
	*t = Targeter{rng: rng}
}

// Mode reports the current search phase.
func (t *Targeter) Mode() Mode { return t.mode }

// Known reports what the targeter knows about c.
func (t *Targeter) Known(c game.Coord) Knowledge {
	if !c.InBounds() {
		return Unknown
	}
	return t.known[c.Row][c.Col]
}

// tried reports whether c has been shot, either per Register or per view.
func (t *Targeter) tried(c game.Coord, view *game.Board) bool {
	if t.known[c.Row][c.Col] != Unknown {
		return true
	}
	return view != nil && view.At(c).Shot()
}

// NextShot picks the next cell to fire at. view is the target board as seen
// by the shooter; only its miss/hit cells are consulted and it may be nil.
// ok is false when every cell has been tried.
func (t *Targeter) NextShot(view *game.Board) (c game.Coord, ok bool) {
	if t.mode == ModeTarget {
		for len(t.stack) > 0 {
			c = t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			if c.InBounds() && !t.tried(c, view) {
				return c, true
			}
		}
		// Lost the trail; the next hit starts a fresh pursuit.
		t.mode = ModeHunt
		t.hasFirst, t.hasDir = false, false
	}
	return t.hunt(view)
}

// hunt draws uniformly from untried parity cells, falling back to any untried cell.
func (t *Targeter) hunt(view *game.Board) (game.Coord, bool) {
	var parity, rest []game.Coord
	for r := 0; r < game.BoardSize; r++ {
		for c := 0; c < game.BoardSize; c++ {
			cell := game.Coord{Row: r, Col: c}
			if t.tried(cell, view) {
				continue
			}
			if (r+c)%2 == 0 {
				parity = append(parity, cell)
			} else {
				rest = append(rest, cell)
			}
		}
	}
	if len(parity) > 0 {
		return parity[t.rng.Intn(len(parity))], true
	}
	if len(rest) > 0 {
		return rest[t.rng.Intn(len(rest))], true
	}
	return game.Coord{}, false
}

// Register feeds back the result of a shot at (row, col).
func (t *Targeter) Register(row, col int, hit, sunk bool) {
	c := game.Coord{Row: row, Col: col}
	if !c.InBounds() {
		return
	}
	if !hit {
		t.known[row][col] = Water
		return
	}
	t.known[row][col] = Hit
	t.pursued = append(t.pursued, c)

	if sunk {
		t.markSunk(c)
		t.clearTarget()
		return
	}

	t.mode = ModeTarget
	if !t.hasFirst {
		t.first, t.hasFirst = c, true
		t.pushNeighbours(c)
		return
	}

	d, axial := axis(t.first, c)
	if !axial {
		// Not in line with the first hit: probably a neighbouring ship.
		t.pushNeighbours(c)
		return
	}
	t.dir, t.hasDir = d, true
	if back, ok := t.extend(t.first, d.Opposite()); ok {
		t.push(back)
	}
	if fwd, ok := t.extend(c, d); ok {
		t.push(fwd)
	}
}

// RegisterOutcome is Register for an engine outcome. Non-consuming outcomes
// only mark the cell as tried when it is on the board.
func (t *Targeter) RegisterOutcome(c game.Coord, o game.Outcome) {
	switch o {
	case game.OutcomeMiss:
		t.Register(c.Row, c.Col, false, false)
	case game.OutcomeHit:
		t.Register(c.Row, c.Col, true, false)
	case game.OutcomeSunk:
		t.Register(c.Row, c.Col, true, true)
	case game.OutcomeAlreadyShot:
		if c.InBounds() && t.known[c.Row][c.Col] == Unknown {
			t.known[c.Row][c.Col] = Water
		}
	}
}

// clearTarget drops the pursuit. Hits not yet accounted to a sunk ship stay
// in pursued so a later sinking can claim them.
func (t *Targeter) clearTarget() {
	t.mode = ModeHunt
	t.stack = t.stack[:0]
	t.hasFirst, t.hasDir = false, false
	kept := t.pursued[:0]
	for _, p := range t.pursued {
		if t.known[p.Row][p.Col] == Hit {
			kept = append(kept, p)
		}
	}
	t.pursued = kept
}

// markSunk marks the run of hits through c that belongs to the sunk ship.
// The run is taken along the pursuit's axis when known, else along the axis
// holding the first hit, else the longer of the two.
func (t *Targeter) markSunk(c game.Coord) {
	across := t.run(c, game.DirLeft, game.DirRight)
	down := t.run(c, game.DirUp, game.DirDown)

	cells := across
	switch {
	case t.hasDir && (t.dir == game.DirUp || t.dir == game.DirDown):
		cells = down
	case t.hasDir:
	case t.hasFirst && contains(down, t.first) && !contains(across, t.first):
		cells = down
	case t.hasFirst && contains(across, t.first):
	case len(down) > len(across):
		cells = down
	}
	for _, p := range cells {
		t.known[p.Row][p.Col] = Sunk
	}
}

// run returns c plus the contiguous known hits on either side of it.
func (t *Targeter) run(c game.Coord, back, fwd game.Direction) []game.Coord {
	cells := []game.Coord{c}
	for _, d := range []game.Direction{back, fwd} {
		n := c.Step(d, 1)
		for n.InBounds() && t.known[n.Row][n.Col] == Hit {
			cells = append(cells, n)
			n = n.Step(d, 1)
		}
	}
	return cells
}

func contains(cells []game.Coord, c game.Coord) bool {
	for _, p := range cells {
		if p == c {
			return true
		}
	}
	return false
}

func (t *Targeter) push(c game.Coord) { t.stack = append(t.stack, c) }

// pushNeighbours pushes the untried in-bounds orthogonal neighbours of c in random order.
func (t *Targeter) pushNeighbours(c game.Coord) {
	dirs := game.Directions
	t.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })
	for _, d := range dirs {
		n := c.Step(d, 1)
		if n.InBounds() && !t.tried(n, nil) {
			t.push(n)
		}
	}
}

// extend walks from c in direction d across known hits and returns the first
// cell past them, if it is on the board and untried.
func (t *Targeter) extend(c game.Coord, d game.Direction) (game.Coord, bool) {
	n := c.Step(d, 1)
	for n.InBounds() && t.known[n.Row][n.Col] == Hit {
		n = n.Step(d, 1)
	}
	if !n.InBounds() || t.tried(n, nil) {
		return game.Coord{}, false
	}
	return n, true
}

// axis returns the direction from a towards b when they share a row or column.
func axis(a, b game.Coord) (game.Direction, bool) {
	switch {
	case a.Row == b.Row && b.Col > a.Col:
		return game.DirRight, true
	case a.Row == b.Row && b.Col < a.Col:
		return game.DirLeft, true
	case a.Col == b.Col && b.Row > a.Row:
		return game.DirDown, true
	case a.Col == b.Col && b.Row < a.Row:
		return game.DirUp, true
	default:
		return 0, false
	}
}
