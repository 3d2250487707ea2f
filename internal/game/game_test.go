package game_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/battleship/internal/game"
)

func TestBoard_FreshIsEmpty(t *testing.T) {
	b := game.NewBoard()
	for r := 0; r < game.BoardSize; r++ {
		for c := 0; c < game.BoardSize; c++ {
			require.Equal(t, game.CellEmpty, b.Cell(r, c))
		}
	}
	require.Equal(t, 100, b.Count(game.CellEmpty))
}

func TestBoard_OutOfRange(t *testing.T) {
	b := game.NewBoard()
	require.Equal(t, game.CellEmpty, b.Cell(-1, 0))
	require.Equal(t, game.CellEmpty, b.Cell(0, 10))

	err := b.Set(10, 0, game.CellShip)
	require.ErrorIs(t, err, game.ErrOutOfBounds)
	require.Equal(t, 100, b.Count(game.CellEmpty))

	require.NoError(t, b.Set(9, 9, game.CellMiss))
	require.Equal(t, game.CellMiss, b.Cell(9, 9))
}

func TestBoard_Masked(t *testing.T) {
	b := game.NewBoard()
	require.NoError(t, b.Set(0, 0, game.CellShip))
	require.NoError(t, b.Set(0, 1, game.CellHit))
	require.NoError(t, b.Set(0, 2, game.CellMiss))

	m := b.Masked()
	require.Equal(t, game.CellEmpty, m.Cell(0, 0))
	require.Equal(t, game.CellHit, m.Cell(0, 1))
	require.Equal(t, game.CellMiss, m.Cell(0, 2))
	require.Equal(t, game.CellShip, b.Cell(0, 0), "original untouched")
}

func TestShip_FrigateSinksOnFirstHit(t *testing.T) {
	s, err := game.NewShip(game.ShipSpec{Kind: game.KindFrigate, Anchor: game.Coord{Row: 1, Col: 1}, Direction: game.DirRight})
	require.NoError(t, err)
	require.Equal(t, []game.Coord{{Row: 1, Col: 1}}, s.Cells())
	require.False(t, s.Sunk())

	s.RegisterHit()
	require.True(t, s.Sunk())
	require.Equal(t, 1, s.Hits())
}

func TestShip_SunkIsMonotonic(t *testing.T) {
	s, err := game.NewShip(game.ShipSpec{Kind: game.KindCruiser, Anchor: game.Coord{Row: 5, Col: 5}, Direction: game.DirUp})
	require.NoError(t, err)
	require.Equal(t, []game.Coord{{Row: 5, Col: 5}, {Row: 4, Col: 5}, {Row: 3, Col: 5}}, s.Cells())

	for i := 1; i <= 5; i++ {
		s.RegisterHit()
		require.Equal(t, i >= 3, s.Sunk(), "after %d hits", i)
	}
	require.Equal(t, 5, s.Hits())
}

func TestNewShip_Rejects(t *testing.T) {
	tests := []struct {
		name string
		spec game.ShipSpec
	}{
		{"leaves grid right", game.ShipSpec{Kind: game.KindAircraftCarrier, Anchor: game.Coord{Row: 0, Col: 7}, Direction: game.DirRight}},
		{"leaves grid up", game.ShipSpec{Kind: game.KindDestroyer, Anchor: game.Coord{Row: 0, Col: 0}, Direction: game.DirUp}},
		{"anchor off grid", game.ShipSpec{Kind: game.KindFrigate, Anchor: game.Coord{Row: 10, Col: 0}, Direction: game.DirDown}},
		{"unknown kind", game.ShipSpec{Kind: game.KindUndefined, Anchor: game.Coord{}, Direction: game.DirDown}},
		{"unknown direction", game.ShipSpec{Kind: game.KindFrigate, Anchor: game.Coord{}, Direction: game.Direction(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := game.NewShip(tt.spec)
			require.ErrorIs(t, err, game.ErrInvalidPlacement)
		})
	}
}

func TestPlace_Overlap(t *testing.T) {
	b := game.NewBoard()
	_, err := game.Place(b, game.ShipSpec{Kind: game.KindAircraftCarrier, Anchor: game.Coord{Row: 0, Col: 0}, Direction: game.DirRight})
	require.NoError(t, err)

	_, err = game.Place(b, game.ShipSpec{Kind: game.KindDestroyer, Anchor: game.Coord{Row: 1, Col: 2}, Direction: game.DirUp})
	require.ErrorIs(t, err, game.ErrInvalidPlacement)
	require.Equal(t, 4, b.Count(game.CellShip), "rejected placement leaves board untouched")

	_, ok := game.TryPlace(b, game.ShipSpec{Kind: game.KindDestroyer, Anchor: game.Coord{Row: 1, Col: 2}, Direction: game.DirDown})
	require.True(t, ok)
	require.Equal(t, 6, b.Count(game.CellShip))
}

func TestPlaceFleet_Invariants(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		b := game.NewBoard()
		fleet, err := game.PlaceFleet(b, rand.New(rand.NewSource(seed)), game.StandardComposition())
		require.NoError(t, err)
		require.Len(t, fleet, 10)
		require.Equal(t, 20, b.Count(game.CellShip))
		require.Equal(t, game.StandardComposition(), fleet.Counts())

		// Largest first.
		require.Equal(t, game.KindAircraftCarrier, fleet[0].Kind())

		for _, s := range fleet {
			cells := s.Cells()
			require.Len(t, cells, s.Size())
			for _, c := range cells {
				require.True(t, c.InBounds(), "seed %d: %s", seed, c)
				require.Equal(t, game.CellShip, b.At(c))
			}
		}
		for i := range fleet {
			for j := i + 1; j < len(fleet); j++ {
				for _, c := range fleet[i].Cells() {
					require.False(t, fleet[j].Occupies(c), "seed %d: ships %d and %d share %s", seed, i, j, c)
				}
			}
		}
		require.NoError(t, fleet.Validate())
	}
}

func TestPlaceFleet_Deterministic(t *testing.T) {
	place := func() []game.ShipSpec {
		b := game.NewBoard()
		fleet, err := game.PlaceFleet(b, rand.New(rand.NewSource(7)), game.StandardComposition())
		require.NoError(t, err)
		out := make([]game.ShipSpec, len(fleet))
		for i, s := range fleet {
			out[i] = s.Spec()
		}
		return out
	}
	require.Equal(t, place(), place())
}

func TestPlaceFleet_Exhausted(t *testing.T) {
	b := game.NewBoard()
	// Only isolated cells in column 0 stay free, so no destroyer fits anywhere.
	for r := 0; r < game.BoardSize; r++ {
		for c := 0; c < game.BoardSize; c++ {
			if c != 0 || r%2 == 0 {
				require.NoError(t, b.Set(r, c, game.CellMiss))
			}
		}
	}
	fleet, err := game.PlaceFleet(b, rand.New(rand.NewSource(1)), game.Composition{game.KindDestroyer: 1})
	require.True(t, errors.Is(err, game.ErrSetupExhausted))
	require.Empty(t, fleet)
}

func TestComposition(t *testing.T) {
	std := game.StandardComposition()
	require.Equal(t, 10, std.Total())
	require.Equal(t, 20, std.Cells())

	left := std.Minus(game.Composition{game.KindFrigate: 4, game.KindCruiser: 1})
	require.Equal(t, game.Composition{game.KindAircraftCarrier: 1, game.KindCruiser: 1, game.KindDestroyer: 3}, left)
}

func TestResolveShot_CarrierScenario(t *testing.T) {
	b := game.NewBoard()
	s, err := game.Place(b, game.ShipSpec{Kind: game.KindAircraftCarrier, Anchor: game.Coord{Row: 0, Col: 0}, Direction: game.DirRight})
	require.NoError(t, err)
	require.Equal(t, []game.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}}, s.Cells())
	fleet := game.Fleet{s}
	rec := game.NewShotRecord()

	require.Equal(t, game.OutcomeHit, game.ResolveShot(rec, b, fleet, 0, 1))
	require.Equal(t, 1, s.Hits())
	require.False(t, s.Sunk())

	require.Equal(t, game.OutcomeHit, game.ResolveShot(rec, b, fleet, 0, 0))
	require.Equal(t, game.OutcomeHit, game.ResolveShot(rec, b, fleet, 0, 2))
	require.Equal(t, game.OutcomeSunk, game.ResolveShot(rec, b, fleet, 0, 3))
	require.True(t, fleet.AllSunk())
	require.Equal(t, 4, b.Count(game.CellHit))
}

func TestResolveShot_MissThenRepeat(t *testing.T) {
	b := game.NewBoard()
	rec := game.NewShotRecord()

	require.Equal(t, game.OutcomeMiss, game.ResolveShot(rec, b, nil, 5, 5))
	require.Equal(t, game.CellMiss, b.Cell(5, 5))
	for i := 0; i < 3; i++ {
		require.Equal(t, game.OutcomeAlreadyShot, game.ResolveShot(rec, b, nil, 5, 5))
	}
	require.Equal(t, 1, rec.Len())
	require.Equal(t, []game.Coord{{Row: 5, Col: 5}}, rec.History())
}

func TestResolveShot_BoardAlreadyMarked(t *testing.T) {
	b := game.NewBoard()
	s, err := game.Place(b, game.ShipSpec{Kind: game.KindDestroyer, Anchor: game.Coord{Row: 2, Col: 2}, Direction: game.DirDown})
	require.NoError(t, err)
	fleet := game.Fleet{s}
	require.NoError(t, b.Set(2, 2, game.CellHit))
	require.NoError(t, b.Set(7, 7, game.CellMiss))
	rec := game.NewShotRecord()

	require.Equal(t, game.OutcomeAlreadyShot, game.ResolveShot(rec, b, fleet, 2, 2))
	require.Equal(t, 0, s.Hits(), "no damage for a cell that was already hit")
	require.Equal(t, game.OutcomeAlreadyShot, game.ResolveShot(rec, b, fleet, 7, 7))
	require.Equal(t, game.CellMiss, b.Cell(7, 7))
	require.Equal(t, game.OutcomeAlreadyShot, game.ResolveShot(rec, b, fleet, 2, 2))

	require.Equal(t, game.OutcomeHit, game.ResolveShot(rec, b, fleet, 3, 2))
	require.Equal(t, 1, s.Hits())
}

func TestResolveShot_Invalid(t *testing.T) {
	b := game.NewBoard()
	rec := game.NewShotRecord()
	require.Equal(t, game.OutcomeInvalid, game.ResolveShot(rec, b, nil, -1, 3))
	require.Equal(t, game.OutcomeInvalid, game.ResolveShot(rec, b, nil, 3, 10))
	require.Equal(t, 0, rec.Len())
}

func TestOutcome_TurnRule(t *testing.T) {
	tests := []struct {
		o    game.Outcome
		keep bool
	}{
		{game.OutcomeMiss, false},
		{game.OutcomeHit, true},
		{game.OutcomeSunk, true},
		{game.OutcomeAlreadyShot, true},
		{game.OutcomeInvalid, true},
	}
	for _, tt := range tests {
		require.Equal(t, tt.keep, tt.o.KeepsTurn(), tt.o.String())
	}
}

func TestFleet_AllSunkEmpty(t *testing.T) {
	require.False(t, game.Fleet{}.AllSunk())
}

func TestParse(t *testing.T) {
	d, err := game.ParseDirection("left")
	require.NoError(t, err)
	require.Equal(t, game.DirLeft, d)
	require.Equal(t, game.DirRight, d.Opposite())

	k, err := game.ParseShipKind("cruiser")
	require.NoError(t, err)
	require.Equal(t, 3, k.Size())

	_, err = game.ParseShipKind("submarine")
	require.Error(t, err)
}
