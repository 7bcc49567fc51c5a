package deck

import (
	rand "math/rand/v2"
)

// StandardDecks is the number of 52-card decks a casino shoe holds.
const StandardDecks = 6

// Shoe represents a multi-deck dealing shoe. The card list only shrinks
// via Draw until Reshuffle rebuilds it; one table owns one shoe.
type Shoe struct {
	cards    []Card
	numDecks int
	rng      *rand.Rand
}

// NewShoe builds a shuffled shoe of numDecks standard 52-card decks.
func NewShoe(rng *rand.Rand, numDecks int) *Shoe {
	s := &Shoe{
		cards:    make([]Card, 0, numDecks*52),
		numDecks: numDecks,
		rng:      rng,
	}
	s.rebuild()
	return s
}

func (s *Shoe) rebuild() {
	s.cards = s.cards[:0]
	for d := 0; d < s.numDecks; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	s.shuffle()
}

func (s *Shoe) shuffle() {
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Draw removes and returns the top card. The second return is false if
// the shoe is empty; callers treat that as a fatal invariant violation.
func (s *Shoe) Draw() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, true
}

// Remaining returns the number of undealt cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// NeedsShuffle reports whether fewer than half the shoe's cards remain.
// Tables check this between rounds only, never mid-round.
func (s *Shoe) NeedsShuffle() bool {
	return len(s.cards) < s.numDecks*52/2
}

// Reshuffle rebuilds the full shoe and shuffles it.
func (s *Shoe) Reshuffle() {
	s.rebuild()
}

// Load replaces the shoe's contents with the given cards in draw order
// (the first card in the slice is drawn first). Used by tests to fix
// the card sequence.
func (s *Shoe) Load(cards []Card) {
	s.cards = s.cards[:0]
	for i := len(cards) - 1; i >= 0; i-- {
		s.cards = append(s.cards, cards[i])
	}
}
