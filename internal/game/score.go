package game

import "github.com/cardroom/blackjack/internal/deck"

// blackjack is the score a hand must not exceed.
const blackjack = 21

// Score returns the best blackjack value of a hand. Every ace counts as
// 11 first; while the total exceeds 21 and an ace is still counted high,
// one ace's contribution is reduced to 1.
func Score(cards []deck.Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > blackjack && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports whether cards form a natural: exactly two cards
// scoring 21. Only a player's first hand slot can hold a natural; split
// hands never qualify, which settlement enforces by hand index.
func IsNatural(cards []deck.Card) bool {
	return len(cards) == 2 && Score(cards) == blackjack
}
