package game

import (
	"errors"
	"testing"

	"github.com/cardroom/blackjack/internal/deck"
	"github.com/cardroom/blackjack/internal/randutil"
)

// startScripted begins a round and then fixes the shoe to the given card
// sequence. Deal order is two cards per player in roster order, then two
// to the dealer, then draws in action order.
func startScripted(t *testing.T, cards string, players ...string) *Table {
	t.Helper()
	tbl := NewTable(randutil.New(1))
	if err := tbl.StartRound(players); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	tbl.shoe.Load(deck.MustParseCards(cards))
	return tbl
}

func betAndDeal(t *testing.T, tbl *Table, bet int) DealSummary {
	t.Helper()
	for _, id := range tbl.Players() {
		if err := tbl.PlaceBet(id, bet); err != nil {
			t.Fatalf("PlaceBet(%s) error = %v", id, err)
		}
	}
	summary, err := tbl.DealInitialCards()
	if err != nil {
		t.Fatalf("DealInitialCards() error = %v", err)
	}
	return summary
}

func TestStartRoundValidation(t *testing.T) {
	t.Parallel()
	tbl := NewTable(randutil.New(1))

	if err := tbl.StartRound(nil); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("StartRound(nil) error = %v, want ErrInvalidAction", err)
	}
	if err := tbl.StartRound([]string{"p1", "p1"}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("StartRound(dup) error = %v, want ErrInvalidAction", err)
	}

	if err := tbl.StartRound([]string{"p1"}); err != nil {
		t.Fatalf("StartRound() error = %v", err)
	}
	if tbl.Phase() != PhaseBetting {
		t.Errorf("Phase() = %s, want betting", tbl.Phase())
	}
	if err := tbl.StartRound([]string{"p1"}); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("StartRound() mid-round error = %v, want ErrInvalidPhase", err)
	}
}

func TestPlaceBetRules(t *testing.T) {
	t.Parallel()
	tbl := NewTable(randutil.New(1))

	if err := tbl.PlaceBet("p1", 10); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("PlaceBet() before round error = %v, want ErrInvalidPhase", err)
	}

	if err := tbl.StartRound([]string{"p1", "p2"}); err != nil {
		t.Fatal(err)
	}

	if err := tbl.PlaceBet("ghost", 10); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("PlaceBet(ghost) error = %v, want ErrUnknownPlayer", err)
	}
	if err := tbl.PlaceBet("p1", 0); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("PlaceBet(0) error = %v, want ErrInvalidAction", err)
	}
	if err := tbl.PlaceBet("p1", -5); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("PlaceBet(-5) error = %v, want ErrInvalidAction", err)
	}
	if err := tbl.PlaceBet("p1", 10); err != nil {
		t.Errorf("PlaceBet() error = %v", err)
	}
	// Betting is write-once per round.
	if err := tbl.PlaceBet("p1", 20); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("re-bet error = %v, want ErrInvalidAction", err)
	}
}

func TestDealRequiresAllBets(t *testing.T) {
	t.Parallel()
	tbl := NewTable(randutil.New(1))
	if err := tbl.StartRound([]string{"p1", "p2"}); err != nil {
		t.Fatal(err)
	}
	if err := tbl.PlaceBet("p1", 10); err != nil {
		t.Fatal(err)
	}

	if _, err := tbl.DealInitialCards(); !errors.Is(err, ErrBettingIncomplete) {
		t.Errorf("DealInitialCards() error = %v, want ErrBettingIncomplete", err)
	}
	if tbl.Phase() != PhaseBetting {
		t.Errorf("failed deal moved phase to %s", tbl.Phase())
	}
}

func TestDealInitialCards(t *testing.T) {
	t.Parallel()
	// p1: Th 9h (19), p2: As Ks (natural), dealer: 6s 6h.
	tbl := startScripted(t, "Th9hAsKs6s6h", "p1", "p2")
	summary := betAndDeal(t, tbl, 10)

	if tbl.Phase() != PhasePlaying {
		t.Fatalf("Phase() = %s, want playing", tbl.Phase())
	}
	if len(summary.Hands) != 2 {
		t.Fatalf("len(Hands) = %d, want 2", len(summary.Hands))
	}
	if summary.Hands[0].Score != 19 || summary.Hands[0].Natural {
		t.Errorf("p1 deal = %+v, want score 19 not natural", summary.Hands[0])
	}
	if summary.Hands[1].Score != 21 || !summary.Hands[1].Natural {
		t.Errorf("p2 deal = %+v, want natural 21", summary.Hands[1])
	}
	if summary.DealerUpCard.String() != "♠6" {
		t.Errorf("DealerUpCard = %s, want ♠6", summary.DealerUpCard)
	}
	if tbl.HoleCardRevealed() {
		t.Error("hole card should stay concealed during play")
	}

	actor, hand, ok := tbl.CurrentActor()
	if !ok || actor != "p1" || hand != 0 {
		t.Errorf("CurrentActor() = %s/%d/%v, want p1/0/true", actor, hand, ok)
	}
}

func TestDealFailsOnShortShoe(t *testing.T) {
	t.Parallel()
	tbl := startScripted(t, "Th9hAsKs6s", "p1", "p2") // 5 cards, 6 needed
	for _, id := range tbl.Players() {
		if err := tbl.PlaceBet(id, 10); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := tbl.DealInitialCards(); !errors.Is(err, ErrShoeEmpty) {
		t.Errorf("DealInitialCards() error = %v, want ErrShoeEmpty", err)
	}
	if tbl.Phase() != PhaseBetting {
		t.Errorf("failed deal moved phase to %s", tbl.Phase())
	}
	if tbl.ShoeRemaining() != 5 {
		t.Errorf("failed deal consumed cards, %d remain", tbl.ShoeRemaining())
	}
}

func TestHitAndBust(t *testing.T) {
	t.Parallel()
	// p1: Th 9h, dealer: 6s 6h, hit: Kd (busts p1).
	tbl := startScripted(t, "Th9h6s6hKd", "p1")
	betAndDeal(t, tbl, 10)

	outcome, err := tbl.Hit("p1")
	if err != nil {
		t.Fatalf("Hit() error = %v", err)
	}
	if outcome.Card == nil || outcome.Card.String() != "♦K" {
		t.Errorf("Hit() card = %v, want ♦K", outcome.Card)
	}
	if outcome.Score != 29 || !outcome.Busted {
		t.Errorf("Hit() = score %d busted %v, want 29/true", outcome.Score, outcome.Busted)
	}

	slots := tbl.PlayerSlots("p1")
	if slots[0].Status != StatusBust {
		t.Errorf("slot status = %s, want bust", slots[0].Status)
	}
	// Sole player busted, so the dealer is up.
	if tbl.Phase() != PhaseDealerTurn {
		t.Errorf("Phase() = %s, want dealer_turn", tbl.Phase())
	}
	if _, _, ok := tbl.CurrentActor(); ok {
		t.Error("CurrentActor() should be none after bust ends the round")
	}
}

func TestHitBelowTwentyOneKeepsTurn(t *testing.T) {
	t.Parallel()
	// p1: 5h 6h, dealer: 6s 6h, hits: 2d then 8c.
	tbl := startScripted(t, "5h6h6s6h2d8c", "p1")
	betAndDeal(t, tbl, 10)

	outcome, err := tbl.Hit("p1")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Score != 13 || outcome.Busted {
		t.Errorf("Hit() = %d/%v, want 13/false", outcome.Score, outcome.Busted)
	}
	if actor, _, ok := tbl.CurrentActor(); !ok || actor != "p1" {
		t.Errorf("turn advanced after non-bust hit, actor = %s/%v", actor, ok)
	}

	// Hitting to exactly 21 still leaves the choice to the player.
	outcome, err = tbl.Hit("p1")
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Score != 21 || outcome.Busted {
		t.Errorf("Hit() = %d/%v, want 21/false", outcome.Score, outcome.Busted)
	}
	if _, _, ok := tbl.CurrentActor(); !ok {
		t.Error("turn should stay with the player on 21")
	}
}

func TestTurnOrderTwoPlayers(t *testing.T) {
	t.Parallel()
	tbl := startScripted(t, "Th9h8c7c6s6h", "p1", "p2")
	betAndDeal(t, tbl, 10)

	if _, err := tbl.Stand("p1"); err != nil {
		t.Fatal(err)
	}
	actor, hand, ok := tbl.CurrentActor()
	if !ok || actor != "p2" || hand != 0 {
		t.Fatalf("after p1 stand, actor = %s/%d/%v, want p2/0", actor, hand, ok)
	}

	if _, err := tbl.Stand("p2"); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := tbl.CurrentActor(); ok {
		t.Error("CurrentActor() should be none once every hand stands")
	}
	if tbl.Phase() != PhaseDealerTurn {
		t.Errorf("Phase() = %s, want dealer_turn", tbl.Phase())
	}
}

func TestNotYourTurn(t *testing.T) {
	t.Parallel()
	tbl := startScripted(t, "Th9h8c7c6s6h", "p1", "p2")
	betAndDeal(t, tbl, 10)

	if _, err := tbl.Hit("p2"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Hit(p2) out of turn error = %v, want ErrNotYourTurn", err)
	}
	if _, err := tbl.Stand("ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Stand(ghost) error = %v, want ErrUnknownPlayer", err)
	}
	if slots := tbl.PlayerSlots("p2"); len(slots[0].Cards) != 2 {
		t.Errorf("rejected action changed p2's hand: %v", slots[0].Cards)
	}
}

func TestActionsOutsidePlayingPhase(t *testing.T) {
	t.Parallel()
	tbl := NewTable(randutil.New(1))
	if err := tbl.StartRound([]string{"p1"}); err != nil {
		t.Fatal(err)
	}

	if _, err := tbl.Hit("p1"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Hit() in betting error = %v, want ErrInvalidPhase", err)
	}
	if _, err := tbl.Stand("p1"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Stand() in betting error = %v, want ErrInvalidPhase", err)
	}
	if _, err := tbl.DoubleDown("p1"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("DoubleDown() in betting error = %v, want ErrInvalidPhase", err)
	}
	if _, err := tbl.Split("p1"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Split() in betting error = %v, want ErrInvalidPhase", err)
	}
	if _, err := tbl.RunDealerAndSettle(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("RunDealerAndSettle() in betting error = %v, want ErrInvalidPhase", err)
	}
}

func TestDoubleDown(t *testing.T) {
	t.Parallel()
	// p1: 5h 6h (11), dealer: 6s 6h, double draw: Th (21).
	tbl := startScripted(t, "5h6h6s6hTh", "p1")
	betAndDeal(t, tbl, 10)

	outcome, err := tbl.DoubleDown("p1")
	if err != nil {
		t.Fatalf("DoubleDown() error = %v", err)
	}
	if outcome.Bet != 20 {
		t.Errorf("bet after double = %d, want 20", outcome.Bet)
	}
	if outcome.Score != 21 || outcome.Busted {
		t.Errorf("DoubleDown() = %d/%v, want 21/false", outcome.Score, outcome.Busted)
	}

	slots := tbl.PlayerSlots("p1")
	if len(slots[0].Cards) != 3 {
		t.Errorf("hand has %d cards, want exactly 3", len(slots[0].Cards))
	}
	if slots[0].Status != StatusStand {
		t.Errorf("slot status = %s, want stand", slots[0].Status)
	}
	if tbl.Phase() != PhaseDealerTurn {
		t.Errorf("Phase() = %s, want dealer_turn", tbl.Phase())
	}
}

func TestDoubleDownBust(t *testing.T) {
	t.Parallel()
	// p1: Th 9h (19), double draw: 5c (24, bust).
	tbl := startScripted(t, "Th9h6s6h5c", "p1")
	betAndDeal(t, tbl, 10)

	outcome, err := tbl.DoubleDown("p1")
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Busted || outcome.Score != 24 {
		t.Errorf("DoubleDown() = %d/%v, want 24/true", outcome.Score, outcome.Busted)
	}
	if slots := tbl.PlayerSlots("p1"); slots[0].Status != StatusBust {
		t.Errorf("slot status = %s, want bust", slots[0].Status)
	}
}

func TestDoubleDownRequiresTwoCards(t *testing.T) {
	t.Parallel()
	tbl := startScripted(t, "5h6h6s6h2d5c", "p1")
	betAndDeal(t, tbl, 10)

	if _, err := tbl.Hit("p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.DoubleDown("p1"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("DoubleDown() on 3 cards error = %v, want ErrInvalidAction", err)
	}
	if slots := tbl.PlayerSlots("p1"); slots[0].Bet != 10 {
		t.Errorf("rejected double changed bet to %d", slots[0].Bet)
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()
	// p1: Th Kh (ten-value pair), dealer: 9s 7s, split draws: 5s 6s.
	tbl := startScripted(t, "ThKh9s7s5s6s", "p1")
	betAndDeal(t, tbl, 10)

	if !tbl.CanSplit("p1") {
		t.Fatal("CanSplit() = false for a ten-value pair")
	}

	outcome, err := tbl.Split("p1")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if outcome.Score != 15 {
		t.Errorf("first hand score = %d, want 15", outcome.Score)
	}

	slots := tbl.PlayerSlots("p1")
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}
	if got := Score(slots[0].Cards); got != 15 { // Th 5s
		t.Errorf("hand 0 score = %d, want 15", got)
	}
	if got := Score(slots[1].Cards); got != 16 { // Kh 6s
		t.Errorf("hand 1 score = %d, want 16", got)
	}
	if slots[1].Bet != 10 {
		t.Errorf("split hand bet = %d, want copy of original 10", slots[1].Bet)
	}
	if slots[1].Status != StatusWaiting {
		t.Errorf("split hand status = %s, want waiting", slots[1].Status)
	}

	// Split does not advance the turn: the first hand stays active.
	actor, hand, ok := tbl.CurrentActor()
	if !ok || actor != "p1" || hand != 0 {
		t.Errorf("CurrentActor() = %s/%d/%v, want p1/0", actor, hand, ok)
	}
}

func TestSplitThenPlayBothHands(t *testing.T) {
	t.Parallel()
	// p1: Th Kh, p2: 8c 7c, dealer: 9s 7s, split draws: 5s 6s.
	tbl := startScripted(t, "ThKh8c7c9s7s5s6s2d", "p1", "p2")
	betAndDeal(t, tbl, 10)

	if _, err := tbl.Split("p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Stand("p1"); err != nil {
		t.Fatal(err)
	}

	// Second split hand next, same player.
	actor, hand, ok := tbl.CurrentActor()
	if !ok || actor != "p1" || hand != 1 {
		t.Fatalf("CurrentActor() = %s/%d/%v, want p1/1", actor, hand, ok)
	}
	if _, err := tbl.Stand("p1"); err != nil {
		t.Fatal(err)
	}

	actor, hand, ok = tbl.CurrentActor()
	if !ok || actor != "p2" || hand != 0 {
		t.Fatalf("CurrentActor() = %s/%d/%v, want p2/0", actor, hand, ok)
	}
	if _, err := tbl.Stand("p2"); err != nil {
		t.Fatal(err)
	}
	if tbl.Phase() != PhaseDealerTurn {
		t.Errorf("Phase() = %s, want dealer_turn", tbl.Phase())
	}
}

func TestSplitRequiresEqualValuePair(t *testing.T) {
	t.Parallel()
	// 9h Th are unequal values (9 vs 10) even though close in rank.
	tbl := startScripted(t, "9hTh6s6h", "p1")
	betAndDeal(t, tbl, 10)

	if tbl.CanSplit("p1") {
		t.Error("CanSplit() = true for 9/10")
	}
	if _, err := tbl.Split("p1"); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("Split() error = %v, want ErrInvalidAction", err)
	}
	if slots := tbl.PlayerSlots("p1"); len(slots) != 1 {
		t.Errorf("rejected split created a hand: %d slots", len(slots))
	}
}

func TestHitOnEmptyShoeLeavesTableUntouched(t *testing.T) {
	t.Parallel()
	// Exactly enough for the deal, nothing left to hit with.
	tbl := startScripted(t, "Th9h8c7c6s6h", "p1", "p2")
	betAndDeal(t, tbl, 10)

	if tbl.ShoeRemaining() != 0 {
		t.Fatalf("ShoeRemaining() = %d, want 0", tbl.ShoeRemaining())
	}

	_, err := tbl.Hit("p1")
	if !errors.Is(err, ErrShoeEmpty) {
		t.Fatalf("Hit() error = %v, want ErrShoeEmpty", err)
	}

	// The failed action must leave the table exactly as it was.
	slots := tbl.PlayerSlots("p1")
	if len(slots[0].Cards) != 2 || slots[0].Status != StatusWaiting {
		t.Errorf("failed hit mutated the hand: %v %s", slots[0].Cards, slots[0].Status)
	}
	if actor, _, ok := tbl.CurrentActor(); !ok || actor != "p1" {
		t.Errorf("failed hit advanced the turn to %s/%v", actor, ok)
	}
	if tbl.Phase() != PhasePlaying {
		t.Errorf("failed hit moved phase to %s", tbl.Phase())
	}
}

func TestShoeReshufflesBetweenRoundsOnly(t *testing.T) {
	t.Parallel()
	tbl := NewTable(randutil.New(9), WithDecks(1))

	// Drain below half capacity mid-"round" setup.
	for tbl.shoe.Remaining() > 20 {
		tbl.shoe.Draw()
	}

	if err := tbl.StartRound([]string{"p1"}); err != nil {
		t.Fatal(err)
	}
	if got := tbl.ShoeRemaining(); got != 52 {
		t.Errorf("StartRound() left %d cards, want reshuffled 52", got)
	}

	// Above half capacity the shoe carries over untouched.
	if err := tbl.PlaceBet("p1", 10); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.DealInitialCards(); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.Stand("p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.RunDealerAndSettle(); err != nil {
		t.Fatal(err)
	}

	before := tbl.ShoeRemaining()
	if err := tbl.StartRound([]string{"p1"}); err != nil {
		t.Fatal(err)
	}
	if got := tbl.ShoeRemaining(); got != before {
		t.Errorf("StartRound() reshuffled at %d/52 remaining", before)
	}
}

func TestFinishedRoundRejectsActions(t *testing.T) {
	t.Parallel()
	tbl := startScripted(t, "Th9h6s6hKd", "p1")
	betAndDeal(t, tbl, 10)
	if _, err := tbl.Stand("p1"); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.RunDealerAndSettle(); err != nil {
		t.Fatal(err)
	}

	if tbl.Phase() != PhaseFinished {
		t.Fatalf("Phase() = %s, want finished", tbl.Phase())
	}
	if err := tbl.PlaceBet("p1", 10); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("PlaceBet() after finish error = %v, want ErrInvalidPhase", err)
	}
	if _, err := tbl.Hit("p1"); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Hit() after finish error = %v, want ErrInvalidPhase", err)
	}
	if _, err := tbl.RunDealerAndSettle(); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("second RunDealerAndSettle() error = %v, want ErrInvalidPhase", err)
	}
}
