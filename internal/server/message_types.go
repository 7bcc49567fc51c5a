package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth        MessageType = "auth"
	MessageTypeJoinRoom    MessageType = "join_room"
	MessageTypeLeaveRoom   MessageType = "leave_room"
	MessageTypeListRooms   MessageType = "list_rooms"
	MessageTypeStartRound  MessageType = "start_round"
	MessageTypePlaceBet    MessageType = "place_bet"
	MessageTypePlayAction  MessageType = "play_action"
	MessageTypeGetState    MessageType = "get_state"
	MessageTypeCheckin     MessageType = "checkin"
	MessageTypeGetProfile  MessageType = "get_profile"
	MessageTypeLeaderboard MessageType = "leaderboard"

	// Server to client messages
	MessageTypeError             MessageType = "error"
	MessageTypeAuthResponse      MessageType = "auth_response"
	MessageTypeRoomJoined        MessageType = "room_joined"
	MessageTypeRoomLeft          MessageType = "room_left"
	MessageTypeRoomList          MessageType = "room_list"
	MessageTypePlayerJoined      MessageType = "player_joined"
	MessageTypePlayerLeft        MessageType = "player_left"
	MessageTypeRoundStarted      MessageType = "round_started"
	MessageTypeBetPlaced         MessageType = "bet_placed"
	MessageTypeHandDealt         MessageType = "hand_dealt"
	MessageTypeActionResult      MessageType = "action_result"
	MessageTypeRoomState         MessageType = "room_state"
	MessageTypeSettlement        MessageType = "settlement"
	MessageTypeCheckinResult     MessageType = "checkin_result"
	MessageTypeProfile           MessageType = "profile"
	MessageTypeLeaderboardResult MessageType = "leaderboard_result"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
