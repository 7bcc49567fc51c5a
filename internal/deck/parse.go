package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseCards parses a compact card string like "AsKhTd" into cards.
// Ranks are A23456789TJQK (case-insensitive), suits are s/h/d/c.
func ParseCards(s string) ([]Card, error) {
	runes := []rune(s)
	if len(runes)%2 != 0 {
		return nil, fmt.Errorf("odd-length card string %q", s)
	}

	cards := make([]Card, 0, len(runes)/2)
	for i := 0; i < len(runes); i += 2 {
		card, err := parseCard(runes[i], runes[i+1])
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// MustParseCards is ParseCards for test fixtures; panics on invalid input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// Notation returns the compact two-character form, e.g. "As" or "Th".
func (c Card) Notation() string {
	ranks := [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "T", "J", "Q", "K"}
	suits := [...]string{"s", "h", "d", "c"}
	return ranks[c.Rank] + suits[c.Suit]
}

// MarshalJSON encodes the card in compact notation.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Notation())
}

// UnmarshalJSON decodes a card from compact notation.
func (c *Card) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	cards, err := ParseCards(s)
	if err != nil {
		return err
	}
	if len(cards) != 1 {
		return fmt.Errorf("expected a single card, got %q", s)
	}
	*c = cards[0]
	return nil
}

func parseCard(rankRune, suitRune rune) (Card, error) {
	var rank Rank
	switch strings.ToUpper(string(rankRune)) {
	case "A":
		rank = Ace
	case "2":
		rank = Two
	case "3":
		rank = Three
	case "4":
		rank = Four
	case "5":
		rank = Five
	case "6":
		rank = Six
	case "7":
		rank = Seven
	case "8":
		rank = Eight
	case "9":
		rank = Nine
	case "T":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	default:
		return Card{}, fmt.Errorf("invalid rank %q", string(rankRune))
	}

	var suit Suit
	switch strings.ToLower(string(suitRune)) {
	case "s":
		suit = Spades
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit %q", string(suitRune))
	}

	return Card{Suit: suit, Rank: rank}, nil
}
