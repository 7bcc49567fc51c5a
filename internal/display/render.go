// Package display renders server messages for a terminal client.
package display

import (
	"fmt"
	"strings"

	"github.com/cardroom/blackjack/internal/deck"
	"github.com/cardroom/blackjack/internal/server"
)

// The dealer's hole card stays face down until the dealer turn.
const holeCard = "🂠"

// Renderer formats game state and results as styled text.
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a renderer with the default styles
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// FormatCards renders cards with red suits highlighted.
func (r *Renderer) FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, card := range cards {
		if card.IsRed() {
			parts[i] = r.styles.CardRed.Render(card.String())
		} else {
			parts[i] = r.styles.CardBlack.Render(card.String())
		}
	}
	return strings.Join(parts, " ")
}

// RoundStarted announces the betting phase.
func (r *Renderer) RoundStarted(data server.RoundStartedData) string {
	var b strings.Builder
	b.WriteString(r.styles.Header.Render("*** NEW ROUND ***"))
	b.WriteString("\n")
	if data.Shuffled {
		b.WriteString(r.styles.Info.Render("The shoe has been reshuffled"))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Players: %s\n", strings.Join(data.Players, ", "))
	fmt.Fprintf(&b, "Place your bets (%d-%d)", data.MinBet, data.MaxBet)
	return b.String()
}

// BetPlaced reports a bet and who is still due.
func (r *Renderer) BetPlaced(data server.BetPlacedData) string {
	line := fmt.Sprintf("%s bets %s", data.Player, r.styles.Gold.Render(fmt.Sprintf("$%d", data.Amount)))
	if len(data.Waiting) > 0 {
		line += r.styles.Info.Render(fmt.Sprintf(" (waiting on %s)", strings.Join(data.Waiting, ", ")))
	}
	return line
}

// HandDealt renders the initial deal with the hole card concealed.
func (r *Renderer) HandDealt(data server.HandDealtData) string {
	var b strings.Builder
	b.WriteString(r.styles.Header.Render("*** DEAL ***"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Dealer: %s %s\n", r.FormatCards([]deck.Card{data.DealerUpCard}), holeCard)
	b.WriteString(r.seats(data.Seats))
	if data.Turn != nil {
		b.WriteString(r.turnLine(*data.Turn))
	}
	return b.String()
}

// ActionResult renders a hit, stand, double or split outcome.
func (r *Renderer) ActionResult(data server.ActionResultData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", data.Player, data.Action)
	if data.Card != nil {
		fmt.Fprintf(&b, " %s", r.FormatCards([]deck.Card{*data.Card}))
	}
	fmt.Fprintf(&b, " (hand %d, score %d)", data.HandIndex+1, data.Score)
	if data.Busted {
		b.WriteString(" ")
		b.WriteString(r.styles.Lose.Render("BUST"))
	}
	b.WriteString("\n")
	if data.Turn != nil {
		b.WriteString(r.turnLine(*data.Turn))
	}
	return b.String()
}

// RoomState renders a full table snapshot.
func (r *Renderer) RoomState(data server.RoomStateData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n",
		r.styles.SubHeader.Render("Room "+data.Room),
		r.styles.Info.Render("["+data.Phase+"]"))

	if len(data.DealerCards) > 0 {
		b.WriteString("Dealer: ")
		b.WriteString(r.FormatCards(data.DealerCards))
		if data.DealerScore > 0 {
			fmt.Fprintf(&b, " (%d)", data.DealerScore)
		} else {
			b.WriteString(" " + holeCard)
		}
		b.WriteString("\n")
	}

	b.WriteString(r.seats(data.Seats))
	if data.Turn != nil {
		b.WriteString(r.turnLine(*data.Turn))
	}
	return b.String()
}

// Settlement renders the dealer result and every hand's outcome.
func (r *Renderer) Settlement(data server.SettlementData) string {
	var b strings.Builder
	b.WriteString(r.styles.Header.Render("*** RESULTS ***"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Dealer: %s (%d)", r.FormatCards(data.Dealer.Cards), data.Dealer.Score)
	if data.Dealer.Busted {
		b.WriteString(" ")
		b.WriteString(r.styles.Win.Render("BUST"))
	}
	b.WriteString("\n")

	for _, entry := range data.Results {
		var outcome string
		switch entry.Outcome {
		case "blackjack":
			outcome = r.styles.Gold.Render("BLACKJACK")
		case "win":
			outcome = r.styles.Win.Render("WIN")
		case "push":
			outcome = r.styles.Push.Render("PUSH")
		default:
			outcome = r.styles.Lose.Render("LOSE")
		}
		fmt.Fprintf(&b, "%s hand %d: %s  bet $%d, paid $%d, balance $%d\n",
			entry.Player, entry.HandIndex+1, outcome, entry.Bet, entry.Payout, entry.Chips)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Checkin renders the daily reward summary.
func (r *Renderer) Checkin(data server.CheckinResultData) string {
	line := fmt.Sprintf("Checked in: +%s, +%d exp",
		r.styles.Gold.Render(fmt.Sprintf("$%d", data.Chips)), data.Exp)
	if data.LeveledUp {
		line += " " + r.styles.Win.Render(fmt.Sprintf("LEVEL UP → %d", data.Profile.Level))
	}
	return line
}

// Profile renders a player card.
func (r *Renderer) Profile(data server.ProfileData) string {
	var b strings.Builder
	b.WriteString(r.styles.SubHeader.Render(data.Nickname))
	fmt.Fprintf(&b, "  level %d (%d/%d exp)\n", data.Level, data.Exp, data.ExpToNext)
	fmt.Fprintf(&b, "Chips: %s\n", r.styles.Gold.Render(fmt.Sprintf("$%d", data.Chips)))
	fmt.Fprintf(&b, "Record: %dW-%dL-%dD (%.1f%%), %d blackjacks",
		data.Wins, data.Losses, data.Draws, data.WinRate, data.Blackjacks)
	return b.String()
}

// Leaderboard renders ranked profiles.
func (r *Renderer) Leaderboard(data server.LeaderboardResultData) string {
	var b strings.Builder
	b.WriteString(r.styles.Header.Render("*** LEADERBOARD: " + strings.ToUpper(data.Kind) + " ***"))
	b.WriteString("\n")
	for i, entry := range data.Entries {
		var value string
		switch data.Kind {
		case "wins":
			value = fmt.Sprintf("%d wins", entry.Wins)
		case "blackjacks":
			value = fmt.Sprintf("%d blackjacks", entry.Blackjacks)
		default:
			value = fmt.Sprintf("$%d", entry.Chips)
		}
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, entry.Nickname, r.styles.Gold.Render(value))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RoomList renders the room directory.
func (r *Renderer) RoomList(data server.RoomListData) string {
	var b strings.Builder
	b.WriteString(r.styles.SubHeader.Render("Rooms"))
	b.WriteString("\n")
	for _, room := range data.Rooms {
		fmt.Fprintf(&b, "  %s  %d/%d players, bets %d-%d  %s\n",
			room.Name, room.PlayerCount, room.MaxPlayers, room.MinBet, room.MaxBet,
			r.styles.Info.Render("["+room.Phase+"]"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) seats(seats []server.SeatView) string {
	var b strings.Builder
	for _, seat := range seats {
		for i, hand := range seat.Hands {
			label := seat.Player
			if len(seat.Hands) > 1 {
				label = fmt.Sprintf("%s (hand %d)", seat.Player, i+1)
			}
			fmt.Fprintf(&b, "%s: %s (%d) bet $%d", label, r.FormatCards(hand.Cards), hand.Score, hand.Bet)
			switch hand.Status {
			case "bust":
				b.WriteString(" " + r.styles.Lose.Render("BUST"))
			case "stand":
				b.WriteString(" " + r.styles.Info.Render("stand"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Renderer) turnLine(turn server.TurnInfo) string {
	return r.styles.SubHeader.Render(fmt.Sprintf("→ %s to act (hand %d)", turn.Player, turn.HandIndex+1)) + "\n"
}
