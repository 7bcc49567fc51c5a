package game

import "fmt"

// RunDealerAndSettle plays out the dealer's hand and settles every slot.
// Valid only once all player turns are over (the table has reached the
// dealer's turn). The dealer reveals the hole card and draws until
// reaching 17 or more, never doubling or splitting, then the round is
// settled and the table is Finished.
//
// Settlement is pure bookkeeping: applying payout deltas to balances is
// the caller's job.
func (t *Table) RunDealerAndSettle() (map[string][]SettlementResult, error) {
	if t.phase != PhaseDealerTurn {
		return nil, fmt.Errorf("%w: expected dealer turn, in %s", ErrInvalidPhase, t.phase)
	}

	for Score(t.dealer) < dealerStandsOn {
		card, ok := t.shoe.Draw()
		if !ok {
			return nil, ErrShoeEmpty
		}
		t.dealer = append(t.dealer, card)
	}

	t.phase = PhaseFinished
	return t.settle(), nil
}

// settle computes the outcome and payout delta for every hand slot in
// player then hand-index order.
func (t *Table) settle() map[string][]SettlementResult {
	dealerValue := Score(t.dealer)
	dealerBusted := dealerValue > blackjack
	dealerNatural := IsNatural(t.dealer)

	results := make(map[string][]SettlementResult, len(t.players))
	for _, id := range t.players {
		slots := t.slots[id]
		settled := make([]SettlementResult, 0, len(slots))
		for idx, slot := range slots {
			settled = append(settled, settleSlot(slot, idx, dealerValue, dealerBusted, dealerNatural))
		}
		results[id] = settled
	}
	return results
}

func settleSlot(slot *HandSlot, handIdx, dealerValue int, dealerBusted, dealerNatural bool) SettlementResult {
	result := SettlementResult{
		HandIndex: handIdx,
		Bet:       slot.Bet,
		Score:     Score(slot.Cards),
	}

	if slot.Status == StatusBust {
		result.Outcome = OutcomeLose
		result.PayoutDelta = -slot.Bet
		return result
	}

	// Splits never make a natural, only the original first hand.
	playerNatural := handIdx == 0 && IsNatural(slot.Cards)

	switch {
	case playerNatural && !dealerNatural:
		result.Outcome = OutcomeBlackjack
		result.Natural = true
		// 3:2 payout, fractional chips truncated toward zero.
		result.PayoutDelta = slot.Bet * 3 / 2
	case dealerNatural && !playerNatural:
		result.Outcome = OutcomeLose
		result.PayoutDelta = -slot.Bet
	case playerNatural && dealerNatural:
		result.Outcome = OutcomePush
		result.Natural = true
	case dealerBusted, result.Score > dealerValue:
		result.Outcome = OutcomeWin
		result.PayoutDelta = slot.Bet
	case result.Score < dealerValue:
		result.Outcome = OutcomeLose
		result.PayoutDelta = -slot.Bet
	default:
		result.Outcome = OutcomePush
	}
	return result
}
