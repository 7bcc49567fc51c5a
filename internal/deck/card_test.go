package deck

import (
	"encoding/json"
	"testing"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "blackjack",
			input: "AsKs",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Spades, Rank: King},
			},
		},
		{
			name:  "mixed suits",
			input: "AhKdQcJs9s",
			expected: []Card{
				{Suit: Hearts, Rank: Ace},
				{Suit: Diamonds, Rank: King},
				{Suit: Clubs, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Nine},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseCards() = %v, want %v", got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("ParseCards()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCardValue(t *testing.T) {
	tests := []struct {
		card  string
		value int
	}{
		{"As", 11},
		{"2h", 2},
		{"9d", 9},
		{"Tc", 10},
		{"Js", 10},
		{"Qh", 10},
		{"Kd", 10},
	}

	for _, tt := range tests {
		card := MustParseCards(tt.card)[0]
		if got := card.Value(); got != tt.value {
			t.Errorf("Value(%s) = %d, want %d", tt.card, got, tt.value)
		}
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card{Suit: Spades, Rank: Ace}, "♠A"},
		{Card{Suit: Hearts, Rank: Ten}, "♥10"},
		{Card{Suit: Diamonds, Rank: Queen}, "♦Q"},
		{Card{Suit: Clubs, Rank: Two}, "♣2"},
	}

	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestCardNotationRoundTrip(t *testing.T) {
	for _, s := range []string{"As", "Th", "2d", "Kc"} {
		card := MustParseCards(s)[0]
		if got := card.Notation(); got != s {
			t.Errorf("Notation() = %q, want %q", got, s)
		}

		data, err := json.Marshal(card)
		if err != nil {
			t.Fatalf("Marshal(%s) error = %v", s, err)
		}
		var back Card
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", data, err)
		}
		if back != card {
			t.Errorf("round trip of %s = %v, want %v", s, back, card)
		}
	}
}

func TestMustParseCardsPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()

	MustParseCards("invalid")
}
