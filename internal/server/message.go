package server

import (
	"encoding/json"
	"time"

	"github.com/cardroom/blackjack/internal/deck"
	"github.com/cardroom/blackjack/internal/game"
	"github.com/cardroom/blackjack/internal/profile"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	Nickname string `json:"nickname"`
	Token    string `json:"token,omitempty"`
}

type JoinRoomData struct {
	Room string `json:"room"`
}

type PlaceBetData struct {
	Amount int `json:"amount"`
}

type PlayActionData struct {
	Action string `json:"action"` // hit, stand, double, split
}

type LeaderboardData struct {
	Kind  string `json:"kind"` // chips, wins, blackjacks
	Limit int    `json:"limit,omitempty"`
}

// Server → Client Messages

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AuthResponseData struct {
	Success  bool        `json:"success"`
	PlayerID string      `json:"playerId,omitempty"`
	Profile  ProfileData `json:"profile,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type RoomInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	MinBet      int    `json:"minBet"`
	MaxBet      int    `json:"maxBet"`
	Phase       string `json:"phase"`
}

type RoomListData struct {
	Rooms []RoomInfo `json:"rooms"`
}

type RoomJoinedData struct {
	Room    string   `json:"room"`
	Players []string `json:"players"`
}

type PlayerJoinedData struct {
	Room   string `json:"room"`
	Player string `json:"player"`
}

type PlayerLeftData struct {
	Room   string `json:"room"`
	Player string `json:"player"`
}

type RoundStartedData struct {
	Room     string   `json:"room"`
	RoundID  string   `json:"roundId"`
	Players  []string `json:"players"`
	MinBet   int      `json:"minBet"`
	MaxBet   int      `json:"maxBet"`
	Shuffled bool     `json:"shuffled"`
}

type BetPlacedData struct {
	Player  string   `json:"player"`
	Amount  int      `json:"amount"`
	Waiting []string `json:"waiting"` // players yet to bet
}

// TurnInfo identifies whose hand is next to act.
type TurnInfo struct {
	Player    string `json:"player"`
	HandIndex int    `json:"handIndex"`
}

type HandView struct {
	Cards  []deck.Card `json:"cards"`
	Score  int         `json:"score"`
	Bet    int         `json:"bet"`
	Status string      `json:"status"`
}

type SeatView struct {
	Player string     `json:"player"`
	Hands  []HandView `json:"hands"`
}

type HandDealtData struct {
	Room         string    `json:"room"`
	Seats        []SeatView `json:"seats"`
	DealerUpCard deck.Card `json:"dealerUpCard"`
	Turn         *TurnInfo `json:"turn,omitempty"`
}

type ActionResultData struct {
	Player    string     `json:"player"`
	Action    string     `json:"action"`
	HandIndex int        `json:"handIndex"`
	Card      *deck.Card `json:"card,omitempty"`
	Score     int        `json:"score"`
	Busted    bool       `json:"busted"`
	Bet       int        `json:"bet"`
	Turn      *TurnInfo  `json:"turn,omitempty"`
}

type RoomStateData struct {
	Room        string      `json:"room"`
	Phase       string      `json:"phase"`
	DealerCards []deck.Card `json:"dealerCards"` // hole card omitted until revealed
	DealerScore int         `json:"dealerScore,omitempty"`
	Seats       []SeatView  `json:"seats"`
	Turn        *TurnInfo   `json:"turn,omitempty"`
}

type DealerResultData struct {
	Cards  []deck.Card `json:"cards"`
	Score  int         `json:"score"`
	Busted bool        `json:"busted"`
}

type SettlementEntryData struct {
	Player    string `json:"player"`
	HandIndex int    `json:"handIndex"`
	Outcome   string `json:"outcome"`
	Bet       int    `json:"bet"`
	Payout    int    `json:"payout"` // amount credited back, stake included
	Chips     int    `json:"chips"`  // balance after settlement
}

type SettlementData struct {
	Room    string                `json:"room"`
	RoundID string                `json:"roundId"`
	Dealer  DealerResultData      `json:"dealer"`
	Results []SettlementEntryData `json:"results"`
}

type CheckinResultData struct {
	Chips     int         `json:"chips"`
	Exp       int         `json:"exp"`
	LeveledUp bool        `json:"leveledUp"`
	Profile   ProfileData `json:"profile"`
}

type ProfileData struct {
	ID         string  `json:"id"`
	Nickname   string  `json:"nickname"`
	Chips      int     `json:"chips"`
	Level      int     `json:"level"`
	Exp        int     `json:"exp"`
	ExpToNext  int     `json:"expToNext"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Draws      int     `json:"draws"`
	Blackjacks int     `json:"blackjacks"`
	WinRate    float64 `json:"winRate"`
}

type LeaderboardResultData struct {
	Kind    string        `json:"kind"`
	Entries []ProfileData `json:"entries"`
}

// Helper functions to convert between internal types and message types

func ProfileDataFrom(p profile.Profile) ProfileData {
	return ProfileData{
		ID:         p.ID,
		Nickname:   p.Nickname,
		Chips:      p.Chips,
		Level:      p.Level,
		Exp:        p.Exp,
		ExpToNext:  p.ExpToNextLevel(),
		Wins:       p.Wins,
		Losses:     p.Losses,
		Draws:      p.Draws,
		Blackjacks: p.Blackjacks,
		WinRate:    p.WinRate(),
	}
}

func handViewFrom(slot game.HandSlot) HandView {
	return HandView{
		Cards:  slot.Cards,
		Score:  game.Score(slot.Cards),
		Bet:    slot.Bet,
		Status: slot.Status.String(),
	}
}

func seatViewsFrom(tbl *game.Table) []SeatView {
	seats := make([]SeatView, 0, len(tbl.Players()))
	for _, id := range tbl.Players() {
		slots := tbl.PlayerSlots(id)
		hands := make([]HandView, len(slots))
		for i, slot := range slots {
			hands[i] = handViewFrom(slot)
		}
		seats = append(seats, SeatView{Player: id, Hands: hands})
	}
	return seats
}

func turnInfoFrom(tbl *game.Table) *TurnInfo {
	player, handIdx, ok := tbl.CurrentActor()
	if !ok {
		return nil
	}
	return &TurnInfo{Player: player, HandIndex: handIdx}
}
