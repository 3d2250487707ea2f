// internal/game/board.go
//
// Board is the 10x10 cell-state store for one side.
// Out-of-range writes are rejected with ErrOutOfBounds; out-of-range reads
// return CellEmpty.

package game

import "fmt"

// Board is a fixed 10x10 grid of cell states, indexed [row][col].
type Board struct {
	Cells [BoardSize][BoardSize]CellState `json:"cells"`
}

// NewBoard returns an all-empty board.
func NewBoard() *Board { return &Board{} }

// InBounds reports whether (row, col) is on the board.
func (b *Board) InBounds(row, col int) bool {
	return Coord{Row: row, Col: col}.InBounds()
}

// Cell returns the state at (row, col), or CellEmpty when out of range.
func (b *Board) Cell(row, col int) CellState {
	if !b.InBounds(row, col) {
		return CellEmpty
	}
	return b.Cells[row][col]
}

// At is Cell for a Coord.
func (b *Board) At(c Coord) CellState { return b.Cell(c.Row, c.Col) }

// Set writes state at (row, col).
func (b *Board) Set(row, col int, state CellState) error {
	if !b.InBounds(row, col) {
		return fmt.Errorf("set (%d,%d): %w", row, col, ErrOutOfBounds)
	}
	b.Cells[row][col] = state
	return nil
}

// Count returns how many cells hold state.
func (b *Board) Count(state CellState) int {
	n := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.Cells[r][c] == state {
				n++
			}
		}
	}
	return n
}

// Masked returns a copy with unshot ship cells hidden as empty.
// This is what the other side is allowed to see.
func (b *Board) Masked() Board {
	out := *b
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if out.Cells[r][c] == CellShip {
				out.Cells[r][c] = CellEmpty
			}
		}
	}
	return out
}
