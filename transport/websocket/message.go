package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	actionRoomCreate = "room:create"
	actionRoomJoin   = "room:join"
	actionGameMove   = "game:move"
	actionGameReset  = "game:reset"

	actionRoomState = "room:state"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries the fields of inbound intents and outbound replies.
type Payload struct {
	Name     string       `json:"name,omitempty"`
	RoomCode string       `json:"room_code,omitempty"`
	Column   *int         `json:"column,omitempty"`
	Color    string       `json:"color,omitempty"`
	Room     *entity.Room `json:"room,omitempty"`
	Error    string       `json:"error,omitempty"`
	Kind     string       `json:"kind,omitempty"`
}
