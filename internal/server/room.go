package server

import (
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/cardroom/blackjack/internal/deck"
	"github.com/cardroom/blackjack/internal/game"
	"github.com/cardroom/blackjack/internal/profile"
	"github.com/cardroom/blackjack/internal/randutil"
	"github.com/cardroom/blackjack/internal/roundid"
)

// Room is a blackjack table with a roster of seated players. The
// roster persists across rounds; the table's own player list is fixed
// per round when the round starts.
type Room struct {
	mu      sync.Mutex
	id      string
	config  RoomConfig
	table   *game.Table
	players []string
	roundID string
}

// RoomService manages rooms and drives rounds from player messages.
type RoomService struct {
	mu       sync.RWMutex
	rooms    map[string]*Room
	server   *Server
	profiles *profile.Store
	logger   *log.Logger
}

// NewRoomService creates rooms from configuration. Each room gets its
// own shoe seeded from the service seed.
func NewRoomService(server *Server, profiles *profile.Store, configs []RoomConfig, logger *log.Logger, seed int64) *RoomService {
	rooms := make(map[string]*Room, len(configs))
	for i, cfg := range configs {
		rooms[cfg.Name] = &Room{
			id:     uuid.NewString(),
			config: cfg,
			table:  game.NewTable(randutil.New(seed+int64(i)), game.WithDecks(cfg.Decks)),
		}
	}

	return &RoomService{
		rooms:    rooms,
		server:   server,
		profiles: profiles,
		logger:   logger.WithPrefix("rooms"),
	}
}

func (rs *RoomService) room(name string) (*Room, error) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room, ok := rs.rooms[name]
	if !ok {
		return nil, fmt.Errorf("unknown room: %s", name)
	}
	return room, nil
}

// ListRooms returns a snapshot of every room.
func (rs *RoomService) ListRooms() []RoomInfo {
	rs.mu.RLock()
	names := make([]string, 0, len(rs.rooms))
	for name := range rs.rooms {
		names = append(names, name)
	}
	rs.mu.RUnlock()
	slices.Sort(names)

	infos := make([]RoomInfo, 0, len(names))
	for _, name := range names {
		room, _ := rs.room(name)
		room.mu.Lock()
		infos = append(infos, RoomInfo{
			ID:          room.id,
			Name:        room.config.Name,
			PlayerCount: len(room.players),
			MaxPlayers:  room.config.MaxPlayers,
			MinBet:      room.config.MinBet,
			MaxBet:      room.config.MaxBet,
			Phase:       room.table.Phase().String(),
		})
		room.mu.Unlock()
	}
	return infos
}

// JoinRoom seats a player. Players seated mid-round join the next round.
func (rs *RoomService) JoinRoom(roomName, player string) ([]string, error) {
	room, err := rs.room(roomName)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if slices.Contains(room.players, player) {
		return nil, fmt.Errorf("%s is already seated in %s", player, roomName)
	}
	if len(room.players) >= room.config.MaxPlayers {
		return nil, fmt.Errorf("room %s is full", roomName)
	}
	room.players = append(room.players, player)

	rs.logger.Info("Player joined room", "room", roomName, "player", player, "seated", len(room.players))
	rs.broadcast(roomName, MessageTypePlayerJoined, PlayerJoinedData{Room: roomName, Player: player})
	return slices.Clone(room.players), nil
}

// LeaveRoom unseats a player. A round already in progress keeps its
// roster; the player's hands still settle against their profile.
func (rs *RoomService) LeaveRoom(roomName, player string) error {
	room, err := rs.room(roomName)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	idx := slices.Index(room.players, player)
	if idx < 0 {
		return fmt.Errorf("%s is not seated in %s", player, roomName)
	}
	room.players = slices.Delete(room.players, idx, idx+1)

	rs.logger.Info("Player left room", "room", roomName, "player", player)
	rs.broadcast(roomName, MessageTypePlayerLeft, PlayerLeftData{Room: roomName, Player: player})
	return nil
}

// StartRound opens betting for everyone currently seated.
func (rs *RoomService) StartRound(roomName, player string) error {
	room, err := rs.room(roomName)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if !slices.Contains(room.players, player) {
		return fmt.Errorf("%s is not seated in %s", player, roomName)
	}

	before := room.table.ShoeRemaining()
	if err := room.table.StartRound(room.players); err != nil {
		return err
	}
	room.roundID = roundid.New()
	shuffled := room.table.ShoeRemaining() != before

	rs.logger.Info("Round started", "room", roomName, "round", room.roundID,
		"players", len(room.players), "shuffled", shuffled)
	rs.broadcast(roomName, MessageTypeRoundStarted, RoundStartedData{
		Room:     roomName,
		RoundID:  room.roundID,
		Players:  slices.Clone(room.players),
		MinBet:   room.config.MinBet,
		MaxBet:   room.config.MaxBet,
		Shuffled: shuffled,
	})
	return nil
}

// PlaceBet stakes chips from the player's profile on the coming hand.
// The deal runs as soon as the last bet lands.
func (rs *RoomService) PlaceBet(roomName, player string, amount int) error {
	room, err := rs.room(roomName)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if amount < room.config.MinBet || amount > room.config.MaxBet {
		return fmt.Errorf("bet must be between %d and %d", room.config.MinBet, room.config.MaxBet)
	}

	if err := rs.debit(player, amount); err != nil {
		return err
	}
	if err := room.table.PlaceBet(player, amount); err != nil {
		rs.credit(player, amount)
		return err
	}

	waiting := rs.waitingBets(room)
	rs.broadcast(roomName, MessageTypeBetPlaced, BetPlacedData{
		Player:  player,
		Amount:  amount,
		Waiting: waiting,
	})

	if len(waiting) == 0 {
		return rs.deal(room)
	}
	return nil
}

func (rs *RoomService) waitingBets(room *Room) []string {
	waiting := []string{}
	for _, p := range room.table.Players() {
		slots := room.table.PlayerSlots(p)
		if len(slots) > 0 && slots[0].Bet == 0 {
			waiting = append(waiting, p)
		}
	}
	return waiting
}

// deal runs the initial deal and announces the first turn. Callers
// hold the room lock.
func (rs *RoomService) deal(room *Room) error {
	summary, err := room.table.DealInitialCards()
	if err != nil {
		return err
	}

	rs.logger.Info("Hand dealt", "room", room.config.Name, "round", room.roundID,
		"upcard", summary.DealerUpCard.String())
	rs.broadcast(room.config.Name, MessageTypeHandDealt, HandDealtData{
		Room:         room.config.Name,
		Seats:        seatViewsFrom(room.table),
		DealerUpCard: summary.DealerUpCard,
		Turn:         turnInfoFrom(room.table),
	})
	return nil
}

// PlayAction applies hit, stand, double or split for the acting player.
func (rs *RoomService) PlayAction(roomName, player, action string) error {
	room, err := rs.room(roomName)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	var outcome game.ActionOutcome
	switch action {
	case "hit":
		outcome, err = room.table.Hit(player)
	case "stand":
		outcome, err = room.table.Stand(player)
	case "double":
		outcome, err = rs.doubleDown(room, player)
	case "split":
		outcome, err = rs.split(room, player)
	default:
		return fmt.Errorf("unknown action: %s", action)
	}
	if err != nil {
		return err
	}

	rs.broadcast(roomName, MessageTypeActionResult, ActionResultData{
		Player:    player,
		Action:    outcome.Action.String(),
		HandIndex: outcome.HandIndex,
		Card:      outcome.Card,
		Score:     outcome.Score,
		Busted:    outcome.Busted,
		Bet:       outcome.Bet,
		Turn:      turnInfoFrom(room.table),
	})

	if room.table.Phase() == game.PhaseDealerTurn {
		return rs.finishRound(room)
	}
	return nil
}

// doubleDown stakes a second bet equal to the first before doubling.
func (rs *RoomService) doubleDown(room *Room, player string) (game.ActionOutcome, error) {
	stake, err := rs.actingBet(room, player)
	if err != nil {
		return game.ActionOutcome{}, err
	}
	if err := rs.debit(player, stake); err != nil {
		return game.ActionOutcome{}, err
	}

	outcome, err := room.table.DoubleDown(player)
	if err != nil {
		rs.credit(player, stake)
		return game.ActionOutcome{}, err
	}
	return outcome, nil
}

// split stakes a bet equal to the original for the new hand.
func (rs *RoomService) split(room *Room, player string) (game.ActionOutcome, error) {
	stake, err := rs.actingBet(room, player)
	if err != nil {
		return game.ActionOutcome{}, err
	}
	if err := rs.debit(player, stake); err != nil {
		return game.ActionOutcome{}, err
	}

	outcome, err := room.table.Split(player)
	if err != nil {
		rs.credit(player, stake)
		return game.ActionOutcome{}, err
	}
	return outcome, nil
}

func (rs *RoomService) actingBet(room *Room, player string) (int, error) {
	actor, handIdx, ok := room.table.CurrentActor()
	if !ok || actor != player {
		return 0, game.ErrNotYourTurn
	}
	slots := room.table.PlayerSlots(player)
	if handIdx >= len(slots) {
		return 0, game.ErrInvalidAction
	}
	return slots[handIdx].Bet, nil
}

// finishRound plays out the dealer, settles every hand against the
// profile store and broadcasts the results. Callers hold the room lock.
func (rs *RoomService) finishRound(room *Room) error {
	results, err := room.table.RunDealerAndSettle()
	if err != nil {
		return err
	}

	dealerCards := room.table.DealerCards()
	dealerScore := game.Score(dealerCards)
	dealer := DealerResultData{
		Cards:  dealerCards,
		Score:  dealerScore,
		Busted: dealerScore > 21,
	}

	entries := []SettlementEntryData{}
	for _, p := range room.table.Players() {
		playerResults := results[p]
		updated, err := rs.applySettlement(p, playerResults)
		if err != nil {
			rs.logger.Error("Failed to settle player", "player", p, "error", err)
			continue
		}
		for _, r := range playerResults {
			entries = append(entries, SettlementEntryData{
				Player:    p,
				HandIndex: r.HandIndex,
				Outcome:   r.Outcome.String(),
				Bet:       r.Bet,
				Payout:    payout(r),
				Chips:     updated.Chips,
			})
		}
	}

	rs.logger.Info("Round settled", "room", room.config.Name, "round", room.roundID,
		"dealer", dealerScore, "hands", len(entries))
	rs.broadcast(room.config.Name, MessageTypeSettlement, SettlementData{
		Room:    room.config.Name,
		RoundID: room.roundID,
		Dealer:  dealer,
		Results: entries,
	})
	return nil
}

// payout is the amount credited back to the player for a settled hand,
// stake included.
func payout(r game.SettlementResult) int {
	switch r.Outcome {
	case game.OutcomeWin, game.OutcomeBlackjack:
		return r.Bet + r.PayoutDelta
	case game.OutcomePush:
		return r.Bet
	default:
		return 0
	}
}

// RoomState returns a snapshot for mid-round resync.
func (rs *RoomService) RoomState(roomName string) (RoomStateData, error) {
	room, err := rs.room(roomName)
	if err != nil {
		return RoomStateData{}, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	state := RoomStateData{
		Room:  roomName,
		Phase: room.table.Phase().String(),
		Seats: seatViewsFrom(room.table),
		Turn:  turnInfoFrom(room.table),
	}
	if room.table.HoleCardRevealed() {
		state.DealerCards = room.table.DealerCards()
		state.DealerScore = game.Score(state.DealerCards)
	} else if up, ok := room.table.DealerUpCard(); ok {
		state.DealerCards = []deck.Card{up}
	}
	return state, nil
}

// Profile store passthroughs for the connection layer.

// Authenticate looks up or creates the profile for a nickname.
func (rs *RoomService) Authenticate(nickname string) (profile.Profile, error) {
	p, err := rs.profiles.GetByNickname(nickname)
	if err == nil {
		return p, nil
	}
	return rs.profiles.Register(uuid.NewString(), nickname)
}

// Checkin claims the daily reward for a nickname.
func (rs *RoomService) Checkin(nickname string) (profile.CheckinResult, error) {
	p, err := rs.profiles.GetByNickname(nickname)
	if err != nil {
		return profile.CheckinResult{}, err
	}
	return rs.profiles.Checkin(p.ID)
}

// ProfileOf returns the profile for a nickname.
func (rs *RoomService) ProfileOf(nickname string) (profile.Profile, error) {
	return rs.profiles.GetByNickname(nickname)
}

// Leaderboard ranks profiles by kind ("chips", "wins" or "blackjacks").
func (rs *RoomService) Leaderboard(kind string, limit int) ([]profile.Profile, error) {
	var k profile.LeaderboardKind
	switch kind {
	case "", "chips":
		k = profile.ByChips
	case "wins":
		k = profile.ByWins
	case "blackjacks":
		k = profile.ByBlackjacks
	default:
		return nil, fmt.Errorf("unknown leaderboard kind: %s", kind)
	}
	if limit <= 0 {
		limit = 10
	}
	return rs.profiles.Leaderboard(k, limit), nil
}

func (rs *RoomService) debit(nickname string, amount int) error {
	p, err := rs.profiles.GetByNickname(nickname)
	if err != nil {
		return err
	}
	_, err = rs.profiles.Debit(p.ID, amount)
	return err
}

func (rs *RoomService) credit(nickname string, amount int) {
	p, err := rs.profiles.GetByNickname(nickname)
	if err != nil {
		rs.logger.Error("Failed to refund stake", "player", nickname, "error", err)
		return
	}
	if _, err := rs.profiles.Credit(p.ID, amount); err != nil {
		rs.logger.Error("Failed to refund stake", "player", nickname, "error", err)
	}
}

func (rs *RoomService) applySettlement(nickname string, results []game.SettlementResult) (profile.Profile, error) {
	p, err := rs.profiles.GetByNickname(nickname)
	if err != nil {
		return profile.Profile{}, err
	}
	return rs.profiles.ApplySettlement(p.ID, results)
}

func (rs *RoomService) broadcast(roomName string, messageType MessageType, data interface{}) {
	if rs.server == nil {
		return
	}
	msg, err := NewMessage(messageType, data)
	if err != nil {
		rs.logger.Error("Failed to build message", "type", messageType, "error", err)
		return
	}
	rs.server.BroadcastToRoom(roomName, msg)
}
