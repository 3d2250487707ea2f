package game

import "errors"

// Gameplay errors. All of them are recoverable by issuing a corrected request,
// except ErrSetupExhausted which ends the session.
var (
	ErrOutOfBounds      = errors.New("coordinate out of bounds")
	ErrInvalidPlacement = errors.New("invalid placement")
	ErrFleetComplete    = errors.New("no more ships of that kind to place")
	ErrSetupExhausted   = errors.New("fleet placement exhausted all candidates")
	ErrNotInSetup       = errors.New("fleet setup is over")
	ErrNotPlaying       = errors.New("game is not in play")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrGameOver         = errors.New("game finished")
	ErrBadSnapshot      = errors.New("invalid snapshot")
)
