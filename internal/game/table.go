package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/cardroom/blackjack/internal/deck"
)

// Phase is the single table-wide state of a round.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseBetting
	PhasePlaying
	PhaseDealerTurn
	PhaseFinished
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhaseBetting:
		return "betting"
	case PhasePlaying:
		return "playing"
	case PhaseDealerTurn:
		return "dealer_turn"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// HandStatus tracks a hand slot through its lifecycle. Transitions are
// monotonic: Waiting moves to Stand or Bust and never reverts.
type HandStatus int

const (
	StatusWaiting HandStatus = iota
	StatusStand
	StatusBust
)

// String returns the string representation of a hand status
func (s HandStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusStand:
		return "stand"
	case StatusBust:
		return "bust"
	default:
		return "unknown"
	}
}

// HandSlot is one bet-carrying hand. A player starts a round with one
// slot; splits append more. Slots are never removed within a round.
type HandSlot struct {
	Cards  []deck.Card
	Bet    int
	Status HandStatus
}

// dealerStandsOn is the score at which the dealer stops drawing.
const dealerStandsOn = 17

// Table owns a shoe, the dealer's hand and one ordered list of
// participating players. It drives the round phase transitions and turn
// order. Tables are not safe for concurrent use; callers running
// multiple tables guard each with its own mutex.
type Table struct {
	shoe        *deck.Shoe
	dealer      []deck.Card
	players     []string
	slots       map[string][]*HandSlot
	currentIdx  int
	currentHand map[string]int
	phase       Phase
}

// Option configures a new table.
type Option func(*tableConfig)

type tableConfig struct {
	numDecks int
	shoe     *deck.Shoe
}

// WithDecks sets the number of decks in the shoe.
func WithDecks(n int) Option {
	return func(c *tableConfig) { c.numDecks = n }
}

// WithShoe replaces the table's shoe. Used by tests to fix card order.
func WithShoe(s *deck.Shoe) Option {
	return func(c *tableConfig) { c.shoe = s }
}

// NewTable creates a table with a freshly shuffled shoe. The shoe
// persists across rounds and is reshuffled between rounds once it drops
// below half capacity.
func NewTable(rng *rand.Rand, opts ...Option) *Table {
	cfg := tableConfig{numDecks: deck.StandardDecks}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shoe == nil {
		cfg.shoe = deck.NewShoe(rng, cfg.numDecks)
	}
	return &Table{
		shoe:  cfg.shoe,
		phase: PhaseWaiting,
	}
}

// StartRound begins a new round with a fixed player roster. Valid only
// when no round is in progress. Each player gets one empty hand slot;
// the shoe is reshuffled here, and only here, when it has fallen below
// half capacity.
func (t *Table) StartRound(playerIDs []string) error {
	if t.phase != PhaseWaiting && t.phase != PhaseFinished {
		return fmt.Errorf("%w: round already in progress (%s)", ErrInvalidPhase, t.phase)
	}
	if len(playerIDs) == 0 {
		return fmt.Errorf("%w: no players", ErrInvalidAction)
	}
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			return fmt.Errorf("%w: duplicate player %s", ErrInvalidAction, id)
		}
		seen[id] = true
	}

	if t.shoe.NeedsShuffle() {
		t.shoe.Reshuffle()
	}

	t.players = append([]string(nil), playerIDs...)
	t.dealer = nil
	t.slots = make(map[string][]*HandSlot, len(playerIDs))
	t.currentHand = make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		t.slots[id] = []*HandSlot{{}}
		t.currentHand[id] = 0
	}
	t.currentIdx = 0
	t.phase = PhaseBetting
	return nil
}

// PlaceBet sets a player's opening bet. Betting is write-once: a slot
// whose bet is already set cannot be re-bet or cancelled.
func (t *Table) PlaceBet(playerID string, amount int) error {
	if t.phase != PhaseBetting {
		return fmt.Errorf("%w: betting is closed (%s)", ErrInvalidPhase, t.phase)
	}
	slots, ok := t.slots[playerID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: bet must be positive", ErrInvalidAction)
	}
	if slots[0].Bet != 0 {
		return fmt.Errorf("%w: bet already placed", ErrInvalidAction)
	}
	slots[0].Bet = amount
	return nil
}

// DealInitialCards deals two cards to each player in order, then two to
// the dealer, and opens the Playing phase. Every player must have bet.
// The dealer's second card stays concealed for display until the
// dealer's turn; its value is known internally.
func (t *Table) DealInitialCards() (DealSummary, error) {
	if t.phase != PhaseBetting {
		return DealSummary{}, fmt.Errorf("%w: expected betting phase, in %s", ErrInvalidPhase, t.phase)
	}
	for _, id := range t.players {
		if t.slots[id][0].Bet == 0 {
			return DealSummary{}, fmt.Errorf("%w: %s has not bet", ErrBettingIncomplete, id)
		}
	}
	if t.shoe.Remaining() < 2*(len(t.players)+1) {
		return DealSummary{}, ErrShoeEmpty
	}

	summary := DealSummary{Hands: make([]DealtHand, 0, len(t.players))}
	for _, id := range t.players {
		slot := t.slots[id][0]
		slot.Cards = append(slot.Cards, t.mustDraw(), t.mustDraw())
		summary.Hands = append(summary.Hands, DealtHand{
			PlayerID: id,
			Cards:    append([]deck.Card(nil), slot.Cards...),
			Score:    Score(slot.Cards),
			Natural:  IsNatural(slot.Cards),
		})
	}
	t.dealer = append(t.dealer, t.mustDraw(), t.mustDraw())
	summary.DealerUpCard = t.dealer[0]

	t.phase = PhasePlaying
	t.currentIdx = 0
	for _, id := range t.players {
		t.currentHand[id] = 0
	}
	return summary, nil
}

// mustDraw draws from a shoe already checked to hold enough cards.
func (t *Table) mustDraw() deck.Card {
	card, ok := t.shoe.Draw()
	if !ok {
		panic("game: shoe exhausted after remaining-count check")
	}
	return card
}

// Hit draws one card into the acting player's active hand. The slot goes
// Bust above 21, which ends the hand; otherwise the same player keeps
// acting on the same hand.
func (t *Table) Hit(playerID string) (ActionOutcome, error) {
	slot, handIdx, err := t.activeSlot(playerID)
	if err != nil {
		return ActionOutcome{}, err
	}

	card, ok := t.shoe.Draw()
	if !ok {
		return ActionOutcome{}, ErrShoeEmpty
	}
	slot.Cards = append(slot.Cards, card)
	score := Score(slot.Cards)
	busted := score > blackjack
	if busted {
		slot.Status = StatusBust
		t.advanceTurn()
	}

	return ActionOutcome{
		Action:    ActionHit,
		PlayerID:  playerID,
		HandIndex: handIdx,
		Card:      &card,
		Score:     score,
		Busted:    busted,
		Bet:       slot.Bet,
	}, nil
}

// Stand marks the active hand as standing and ends its turn.
func (t *Table) Stand(playerID string) (ActionOutcome, error) {
	slot, handIdx, err := t.activeSlot(playerID)
	if err != nil {
		return ActionOutcome{}, err
	}

	slot.Status = StatusStand
	t.advanceTurn()

	return ActionOutcome{
		Action:    ActionStand,
		PlayerID:  playerID,
		HandIndex: handIdx,
		Score:     Score(slot.Cards),
		Bet:       slot.Bet,
	}, nil
}

// DoubleDown doubles the active hand's bet, draws exactly one card and
// ends the hand. Only legal on a two-card hand.
func (t *Table) DoubleDown(playerID string) (ActionOutcome, error) {
	slot, handIdx, err := t.activeSlot(playerID)
	if err != nil {
		return ActionOutcome{}, err
	}
	if len(slot.Cards) != 2 {
		return ActionOutcome{}, fmt.Errorf("%w: double down requires exactly two cards", ErrInvalidAction)
	}

	card, ok := t.shoe.Draw()
	if !ok {
		return ActionOutcome{}, ErrShoeEmpty
	}
	slot.Bet *= 2
	slot.Cards = append(slot.Cards, card)
	score := Score(slot.Cards)
	busted := score > blackjack
	if busted {
		slot.Status = StatusBust
	} else {
		slot.Status = StatusStand
	}
	t.advanceTurn()

	return ActionOutcome{
		Action:    ActionDoubleDown,
		PlayerID:  playerID,
		HandIndex: handIdx,
		Card:      &card,
		Score:     score,
		Busted:    busted,
		Bet:       slot.Bet,
	}, nil
}

// Split divides a two-card pair of equal value into two hands, each
// seeded with one of the pair plus a fresh card, the second carrying a
// copy of the original bet. The turn stays on the first hand.
func (t *Table) Split(playerID string) (ActionOutcome, error) {
	slot, handIdx, err := t.activeSlot(playerID)
	if err != nil {
		return ActionOutcome{}, err
	}
	if len(slot.Cards) != 2 || slot.Cards[0].Value() != slot.Cards[1].Value() {
		return ActionOutcome{}, fmt.Errorf("%w: split requires a two-card pair of equal value", ErrInvalidAction)
	}
	if t.shoe.Remaining() < 2 {
		return ActionOutcome{}, ErrShoeEmpty
	}

	moved := slot.Cards[1]
	slot.Cards = slot.Cards[:1]
	newSlot := &HandSlot{
		Cards:  []deck.Card{moved},
		Bet:    slot.Bet,
		Status: StatusWaiting,
	}
	t.slots[playerID] = append(t.slots[playerID], newSlot)

	slot.Cards = append(slot.Cards, t.mustDraw())
	newSlot.Cards = append(newSlot.Cards, t.mustDraw())

	return ActionOutcome{
		Action:    ActionSplit,
		PlayerID:  playerID,
		HandIndex: handIdx,
		Score:     Score(slot.Cards),
		Bet:       slot.Bet,
	}, nil
}

// activeSlot validates that playerID is the table's current actor and
// returns the slot they are playing.
func (t *Table) activeSlot(playerID string) (*HandSlot, int, error) {
	if t.phase != PhasePlaying {
		return nil, 0, fmt.Errorf("%w: expected playing phase, in %s", ErrInvalidPhase, t.phase)
	}
	slots, ok := t.slots[playerID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if t.players[t.currentIdx] != playerID {
		return nil, 0, fmt.Errorf("%w: %s is up", ErrNotYourTurn, t.players[t.currentIdx])
	}
	handIdx := t.currentHand[playerID]
	slot := slots[handIdx]
	if slot.Status != StatusWaiting {
		return nil, 0, fmt.Errorf("%w: hand %d already %s", ErrNotYourTurn, handIdx, slot.Status)
	}
	return slot, handIdx, nil
}

// advanceTurn is the single turn-advance rule, invoked after every
// terminal sub-action. The active player's next waiting slot comes
// first; then the scan moves through the remaining players in roster
// order. With no waiting slot anywhere the dealer's turn begins.
func (t *Table) advanceTurn() {
	playerID := t.players[t.currentIdx]
	for idx := t.currentHand[playerID] + 1; idx < len(t.slots[playerID]); idx++ {
		if t.slots[playerID][idx].Status == StatusWaiting {
			t.currentHand[playerID] = idx
			return
		}
	}

	for i := t.currentIdx + 1; i < len(t.players); i++ {
		next := t.players[i]
		for idx, slot := range t.slots[next] {
			if slot.Status == StatusWaiting {
				t.currentIdx = i
				t.currentHand[next] = idx
				return
			}
		}
	}

	t.phase = PhaseDealerTurn
}

// CurrentActor returns the player and hand index whose turn it is, or
// ok=false outside the Playing phase.
func (t *Table) CurrentActor() (playerID string, handIndex int, ok bool) {
	if t.phase != PhasePlaying {
		return "", 0, false
	}
	playerID = t.players[t.currentIdx]
	return playerID, t.currentHand[playerID], true
}

// CanSplit reports whether the player may split their active hand.
func (t *Table) CanSplit(playerID string) bool {
	slot, _, err := t.activeSlot(playerID)
	if err != nil {
		return false
	}
	return len(slot.Cards) == 2 && slot.Cards[0].Value() == slot.Cards[1].Value()
}

// HandValue returns the score of one of a player's hands.
func (t *Table) HandValue(playerID string, handIndex int) (int, error) {
	slots, ok := t.slots[playerID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if handIndex < 0 || handIndex >= len(slots) {
		return 0, fmt.Errorf("%w: no hand %d", ErrInvalidAction, handIndex)
	}
	return Score(slots[handIndex].Cards), nil
}

// Phase returns the table's current phase.
func (t *Table) Phase() Phase {
	return t.phase
}

// Players returns the round's roster in seating order.
func (t *Table) Players() []string {
	return append([]string(nil), t.players...)
}

// PlayerSlots returns copies of a player's hand slots in order.
func (t *Table) PlayerSlots(playerID string) []HandSlot {
	slots := t.slots[playerID]
	out := make([]HandSlot, len(slots))
	for i, s := range slots {
		out[i] = HandSlot{
			Cards:  append([]deck.Card(nil), s.Cards...),
			Bet:    s.Bet,
			Status: s.Status,
		}
	}
	return out
}

// DealerUpCard returns the dealer's visible card, if dealt.
func (t *Table) DealerUpCard() (deck.Card, bool) {
	if len(t.dealer) == 0 {
		return deck.Card{}, false
	}
	return t.dealer[0], true
}

// DealerCards returns the dealer's full hand. Display layers must keep
// the hole card concealed until HoleCardRevealed reports true.
func (t *Table) DealerCards() []deck.Card {
	return append([]deck.Card(nil), t.dealer...)
}

// HoleCardRevealed reports whether the dealer's hole card is public.
func (t *Table) HoleCardRevealed() bool {
	return t.phase == PhaseDealerTurn || t.phase == PhaseFinished
}

// ShoeRemaining returns the number of undealt cards in the shoe.
func (t *Table) ShoeRemaining() int {
	return t.shoe.Remaining()
}
