package game

import "github.com/cardroom/blackjack/internal/deck"

// Action identifies a player move during the Playing phase.
type Action int

const (
	ActionHit Action = iota
	ActionStand
	ActionDoubleDown
	ActionSplit
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case ActionHit:
		return "hit"
	case ActionStand:
		return "stand"
	case ActionDoubleDown:
		return "double"
	case ActionSplit:
		return "split"
	default:
		return "unknown"
	}
}

// Outcome classifies a settled hand.
type Outcome int

const (
	OutcomeWin Outcome = iota
	OutcomeLose
	OutcomePush
	OutcomeBlackjack
)

// String returns the string representation of an outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	case OutcomePush:
		return "push"
	case OutcomeBlackjack:
		return "blackjack"
	default:
		return "unknown"
	}
}

// ActionOutcome is the immutable result of a single playing action.
type ActionOutcome struct {
	Action    Action
	PlayerID  string
	HandIndex int

	// Card is the card drawn by hit and double-down; nil for stand and split.
	Card *deck.Card

	// Score is the acted-on hand's value after the action. For split it is
	// the first of the two resulting hands.
	Score int

	Busted bool

	// Bet is the slot's bet after the action (doubled by double-down).
	Bet int
}

// DealtHand describes one player's opening hand in a DealSummary.
type DealtHand struct {
	PlayerID string
	Cards    []deck.Card
	Score    int
	Natural  bool
}

// DealSummary is returned by DealInitialCards. The dealer's hole card is
// withheld; only the up card is included until the dealer's turn.
type DealSummary struct {
	Hands        []DealtHand
	DealerUpCard deck.Card
}

// SettlementResult is the settled outcome of one hand slot. PayoutDelta
// is the chip movement relative to the stake: -bet on a loss, 0 on a
// push, +bet on a win and +1.5×bet (truncated) on a natural. The caller
// additionally returns the original stake on push, win and blackjack.
type SettlementResult struct {
	HandIndex   int
	Outcome     Outcome
	Bet         int
	PayoutDelta int
	Natural     bool
	Score       int
}
