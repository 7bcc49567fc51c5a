package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/cardroom/blackjack/internal/auth"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	nickname  string
	roomName  string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	rooms     *RoomService
	validator auth.Validator
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, rooms *RoomService, validator auth.Validator) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:      conn,
		send:      make(chan *Message, 256),
		logger:    logger.WithPrefix("conn"),
		ctx:       ctx,
		cancel:    cancel,
		rooms:     rooms,
		validator: validator,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetNickname associates this connection with a player
func (c *Connection) SetNickname(nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nickname = nickname
}

// GetNickname returns the associated player nickname
func (c *Connection) GetNickname() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nickname
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomName = roomName
}

// GetRoom returns the associated room name
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomName
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetNickname())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeListRooms:
		c.handleListRooms()

	case MessageTypeStartRound:
		c.handleStartRound()

	case MessageTypePlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bet data")
			return
		}
		c.handlePlaceBet(data)

	case MessageTypePlayAction:
		var data PlayActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse action data")
			return
		}
		c.handlePlayAction(data)

	case MessageTypeGetState:
		c.handleGetState()

	case MessageTypeCheckin:
		c.handleCheckin()

	case MessageTypeGetProfile:
		c.handleGetProfile()

	case MessageTypeLeaderboard:
		var data LeaderboardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leaderboard data")
			return
		}
		c.handleLeaderboard(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

// authed checks authentication and returns the nickname.
func (c *Connection) authed() (string, bool) {
	nickname := c.GetNickname()
	if nickname == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return "", false
	}
	return nickname, true
}

// inRoom checks room membership and returns nickname and room.
func (c *Connection) inRoom() (nickname, room string, ok bool) {
	nickname, ok = c.authed()
	if !ok {
		return "", "", false
	}
	room = c.GetRoom()
	if room == "" {
		c.sendError("not_in_room", "Join a room first")
		return "", "", false
	}
	return nickname, room, true
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "nickname", data.Nickname)

	nickname := data.Nickname

	identity, err := c.validator.Validate(c.ctx, data.Token)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken):
			c.sendError("invalid_token", "Token validation failed")
		case errors.Is(err, auth.ErrUnavailable):
			c.sendError("auth_unavailable", "Authentication service unavailable, try again")
		default:
			c.sendError("auth_failed", err.Error())
		}
		return
	}
	// A validated identity takes precedence over the client-supplied name
	if identity != nil && identity.Nickname != "" {
		nickname = identity.Nickname
	}

	if nickname == "" {
		c.sendError("invalid_auth", "Nickname required")
		return
	}

	p, err := c.rooms.Authenticate(nickname)
	if err != nil {
		c.sendError("auth_failed", err.Error())
		return
	}

	c.SetNickname(nickname)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: p.ID,
		Profile:  ProfileDataFrom(p),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	nickname, ok := c.authed()
	if !ok {
		return
	}

	c.logger.Info("Join room request", "room", data.Room, "player", nickname)

	players, err := c.rooms.JoinRoom(data.Room, nickname)
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	c.SetRoom(data.Room)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		Room:    data.Room,
		Players: players,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaveRoom() {
	nickname, room, ok := c.inRoom()
	if !ok {
		return
	}

	if err := c.rooms.LeaveRoom(room, nickname); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	c.SetRoom("")

	response, _ := NewMessage(MessageTypeRoomLeft, map[string]string{"room": room})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListRooms() {
	response, _ := NewMessage(MessageTypeRoomList, RoomListData{
		Rooms: c.rooms.ListRooms(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleStartRound() {
	nickname, room, ok := c.inRoom()
	if !ok {
		return
	}

	if err := c.rooms.StartRound(room, nickname); err != nil {
		c.sendError("start_failed", err.Error())
	}
	// The round broadcast goes to the whole room
}

func (c *Connection) handlePlaceBet(data PlaceBetData) {
	nickname, room, ok := c.inRoom()
	if !ok {
		return
	}

	if err := c.rooms.PlaceBet(room, nickname, data.Amount); err != nil {
		c.sendError("bet_failed", err.Error())
	}
}

func (c *Connection) handlePlayAction(data PlayActionData) {
	nickname, room, ok := c.inRoom()
	if !ok {
		return
	}

	if err := c.rooms.PlayAction(room, nickname, data.Action); err != nil {
		c.sendError("action_failed", err.Error())
	}
}

func (c *Connection) handleGetState() {
	_, room, ok := c.inRoom()
	if !ok {
		return
	}

	state, err := c.rooms.RoomState(room)
	if err != nil {
		c.sendError("state_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeRoomState, state)
	_ = c.SendMessage(response)
}

func (c *Connection) handleCheckin() {
	nickname, ok := c.authed()
	if !ok {
		return
	}

	result, err := c.rooms.Checkin(nickname)
	if err != nil {
		c.sendError("checkin_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeCheckinResult, CheckinResultData{
		Chips:     result.Chips,
		Exp:       result.Exp,
		LeveledUp: result.LeveledUp,
		Profile:   ProfileDataFrom(result.Profile),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleGetProfile() {
	nickname, ok := c.authed()
	if !ok {
		return
	}

	p, err := c.rooms.ProfileOf(nickname)
	if err != nil {
		c.sendError("profile_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeProfile, ProfileDataFrom(p))
	_ = c.SendMessage(response)
}

func (c *Connection) handleLeaderboard(data LeaderboardData) {
	if _, ok := c.authed(); !ok {
		return
	}

	profiles, err := c.rooms.Leaderboard(data.Kind, data.Limit)
	if err != nil {
		c.sendError("leaderboard_failed", err.Error())
		return
	}

	entries := make([]ProfileData, len(profiles))
	for i, p := range profiles {
		entries[i] = ProfileDataFrom(p)
	}

	kind := data.Kind
	if kind == "" {
		kind = "chips"
	}
	response, _ := NewMessage(MessageTypeLeaderboardResult, LeaderboardResultData{
		Kind:    kind,
		Entries: entries,
	})
	_ = c.SendMessage(response)
}
