// internal/session/session.go
//
// Session is one human-vs-opponent match.
// Responsibilities:
//   - Own both boards, fleets and shot records, the turn and the phase.
//   - Fleet setup: manual placement for the human, random placement for either side.
//   - Delegate every shot to game.ResolveShot and apply the turn rule.
//   - Source opponent shots from the hunt/target Targeter and feed results back.
//   - Detect game over and record the winner.
//
// Notes:
//   - A Session has no internal locking. Hosts must serialise mutating calls.
//   - Phase moves setup → playing automatically once both fleets are complete;
//     the human shoots first.

package session

import (
	crand "crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/battleship/internal/ai"
	"github.com/robalobadob/battleship/internal/game"
)

// Shot is one resolved shot as reported to callers.
type Shot struct {
	Side    game.Side    `json:"side"`
	Coord   game.Coord   `json:"coord"`
	Outcome game.Outcome `json:"outcome"`
}

// Session holds the state of a single match.
type Session struct {
	ID         string
	PlayerName string
	CreatedAt  time.Time

	rng *rand.Rand
	log zerolog.Logger

	boards [2]*game.Board
	fleets [2]game.Fleet
	shots  [2]*game.ShotRecord

	turn      game.Side
	phase     game.Phase
	winner    game.Side
	hasWinner bool
	fatal     error

	targeter *ai.Targeter
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for placement and targeting.
func WithRand(rng *rand.Rand) Option { return func(s *Session) { s.rng = rng } }

// WithSeed is WithRand with a fresh source seeded by seed.
func WithSeed(seed int64) Option {
	return func(s *Session) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the logger for match events (debug level).
func WithLogger(l zerolog.Logger) Option { return func(s *Session) { s.log = l } }

// WithID overrides the generated session ID.
func WithID(id string) Option { return func(s *Session) { s.ID = id } }

// New constructs an empty match in the setup phase.
func New(playerName string, opts ...Option) *Session {
	s := &Session{
		ID:         randomID(),
		PlayerName: playerName,
		CreatedAt:  time.Now().UTC(),
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(newSeed()))
	}
	for i := range s.boards {
		s.boards[i] = game.NewBoard()
		s.shots[i] = game.NewShotRecord()
	}
	s.targeter = ai.New(s.rng)
	s.log = s.log.With().Str("session", s.ID).Logger()
	return s
}

// ------------------------------- setup -------------------------------------

// Remaining returns the ships side still has to place.
func (s *Session) Remaining(side game.Side) game.Composition {
	return game.StandardComposition().Minus(s.fleets[side].Counts())
}

// PlaceHumanShip places one human ship by hand. Overlaps, off-grid placements
// and kinds already fully placed are rejected; the caller may retry.
func (s *Session) PlaceHumanShip(sp game.ShipSpec) error {
	if err := s.checkSetup(); err != nil {
		return err
	}
	if sp.Kind.Valid() && s.Remaining(game.SideHuman)[sp.Kind] == 0 {
		return fmt.Errorf("%s: %w", sp.Kind, game.ErrFleetComplete)
	}
	ship, err := game.Place(s.boards[game.SideHuman], sp)
	if err != nil {
		return err
	}
	s.fleets[game.SideHuman] = append(s.fleets[game.SideHuman], ship)
	s.log.Debug().Str("ship", sp.String()).Msg("human ship placed")
	s.maybeStart()
	return nil
}

// AutoPlaceFleet randomly places whatever side still lacks.
func (s *Session) AutoPlaceFleet(side game.Side) error {
	return s.autoPlace(side, s.rng)
}

// AutoPlaceFleetSeeded places side's missing ships from a dedicated seed, so
// the layout does not depend on the session's own random source.
func (s *Session) AutoPlaceFleetSeeded(side game.Side, seed int64) error {
	return s.autoPlace(side, rand.New(rand.NewSource(seed)))
}

func (s *Session) autoPlace(side game.Side, rng *rand.Rand) error {
	if !side.Valid() {
		return fmt.Errorf("unknown side %d", side)
	}
	if err := s.checkSetup(); err != nil {
		return err
	}
	placed, err := game.PlaceFleet(s.boards[side], rng, s.Remaining(side))
	s.fleets[side] = append(s.fleets[side], placed...)
	if err != nil {
		s.fatal = err
		s.log.Error().Err(err).Str("side", side.String()).Msg("fleet placement failed")
		return err
	}
	s.log.Debug().Str("side", side.String()).Int("ships", len(placed)).Msg("fleet auto-placed")
	s.maybeStart()
	return nil
}

// ClearFleet removes every ship of side during setup so it can be placed again.
func (s *Session) ClearFleet(side game.Side) error {
	if !side.Valid() {
		return fmt.Errorf("unknown side %d", side)
	}
	if err := s.checkSetup(); err != nil {
		return err
	}
	s.boards[side] = game.NewBoard()
	s.fleets[side] = nil
	return nil
}

func (s *Session) checkSetup() error {
	if s.fatal != nil {
		return s.fatal
	}
	if s.phase != game.PhaseSetup {
		return game.ErrNotInSetup
	}
	return nil
}

func (s *Session) maybeStart() {
	if s.Remaining(game.SideHuman).Total() > 0 || s.Remaining(game.SideOpponent).Total() > 0 {
		return
	}
	s.phase = game.PhasePlaying
	s.turn = game.SideHuman
	s.targeter.Reset()
	s.log.Info().Str("player", s.PlayerName).Msg("match started")
}

// ------------------------------- play --------------------------------------

// Shoot fires side's shot at (row, col) on the other side's board.
//
// Only a miss passes the turn. AlreadyShot and Invalid are outcomes, not
// errors: the same side must shoot again. Errors are reserved for shots the
// match cannot accept at all (wrong phase, wrong side).
func (s *Session) Shoot(side game.Side, row, col int) (game.Outcome, error) {
	if s.fatal != nil {
		return game.OutcomeInvalid, s.fatal
	}
	switch s.phase {
	case game.PhaseSetup:
		return game.OutcomeInvalid, game.ErrNotPlaying
	case game.PhaseFinished:
		return game.OutcomeInvalid, game.ErrGameOver
	}
	if side != s.turn {
		return game.OutcomeInvalid, game.ErrNotYourTurn
	}

	target := side.Other()
	o := game.ResolveShot(s.shots[side], s.boards[target], s.fleets[target], row, col)
	s.log.Debug().
		Str("side", side.String()).
		Int("row", row).
		Int("col", col).
		Str("outcome", o.String()).
		Msg("shot")

	if o.Resolved() && s.fleets[target].AllSunk() {
		s.phase = game.PhaseFinished
		s.winner, s.hasWinner = side, true
		s.log.Info().Str("winner", side.String()).Int("shots", s.shots[side].Len()).Msg("match finished")
		return o, nil
	}
	if !o.KeepsTurn() {
		s.turn = target
	}
	return o, nil
}

// OpponentShot lets the targeter take exactly one resolved shot. Repeats and
// invalid picks are fed back and re-selected rather than passing the turn.
func (s *Session) OpponentShot() (Shot, error) {
	human := s.boards[game.SideHuman]
	for attempt := 0; attempt <= game.BoardSize*game.BoardSize; attempt++ {
		c, ok := s.targeter.NextShot(human)
		if !ok {
			return Shot{}, fmt.Errorf("opponent has no cell left to shoot: %w", game.ErrGameOver)
		}
		o, err := s.Shoot(game.SideOpponent, c.Row, c.Col)
		if err != nil {
			return Shot{}, err
		}
		s.targeter.RegisterOutcome(c, o)
		if o.Resolved() {
			return Shot{Side: game.SideOpponent, Coord: c, Outcome: o}, nil
		}
	}
	return Shot{}, fmt.Errorf("opponent could not pick a valid shot")
}

// PlayOpponentTurn keeps shooting for the opponent until the turn passes back
// or the match ends. It is a no-op when it is not the opponent's turn.
func (s *Session) PlayOpponentTurn() ([]Shot, error) {
	var out []Shot
	for s.phase == game.PhasePlaying && s.turn == game.SideOpponent {
		shot, err := s.OpponentShot()
		if err != nil {
			return out, err
		}
		out = append(out, shot)
	}
	return out, nil
}

// ----------------------------- accessors -----------------------------------

func (s *Session) CurrentTurn() game.Side { return s.turn }
func (s *Session) Phase() game.Phase { return s.phase }
func (s *Session) IsOver() bool { return s.phase == game.PhaseFinished }

// Winner returns the winning side once the match is finished.
func (s *Session) Winner() (game.Side, bool) { return s.winner, s.hasWinner }

// Board returns a copy of side's board.
func (s *Session) Board(side game.Side) game.Board { return *s.boards[side] }

// ShotsFired returns how many resolved shots side has taken.
func (s *Session) ShotsFired(side game.Side) int { return s.shots[side].Len() }

// ShipsAfloat returns how many of side's ships are not sunk.
func (s *Session) ShipsAfloat(side game.Side) int { return s.fleets[side].Afloat() }

// Targeter exposes the opponent's targeting state.
func (s *Session) Targeter() *ai.Targeter { return s.targeter }

// ------------------------------- util --------------------------------------

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// newSeed draws a seed from crypto/rand, falling back to the clock.
func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
