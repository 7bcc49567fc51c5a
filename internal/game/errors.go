package game

import "errors"

var (
	// ErrInvalidPhase indicates an action attempted outside its legal phase.
	ErrInvalidPhase = errors.New("game: invalid phase for action")

	// ErrUnknownPlayer indicates a player ID that is not part of the round.
	ErrUnknownPlayer = errors.New("game: unknown player")

	// ErrNotYourTurn indicates an action by a player or hand that is not
	// currently active.
	ErrNotYourTurn = errors.New("game: not your turn")

	// ErrInvalidAction indicates unmet double-down or split preconditions.
	ErrInvalidAction = errors.New("game: invalid action")

	// ErrBettingIncomplete indicates a deal attempted before every player
	// placed a bet.
	ErrBettingIncomplete = errors.New("game: betting incomplete")

	// ErrShoeEmpty indicates the shoe ran out of cards mid-round. With a
	// six-deck shoe and a bounded table this is unreachable; if it fires
	// the round must be abandoned, never silently continued.
	ErrShoeEmpty = errors.New("game: shoe empty")
)
