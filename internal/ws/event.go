package ws

import (
	"errors"
	"time"

	"github.com/chatgate/internal/model"
)

type EventType string

const (
	// client -> gateway
	EventJoinRoom    EventType = "join_room"
	EventSendMessage EventType = "send_message"

	// gateway -> client
	EventRoomJoined EventType = "room_joined"
	EventNewMessage EventType = "new_message"
	EventError      EventType = "error"
)

// IncomingEvent is what the client sends to the gateway. The shape is flat;
// Validate checks the fields required by each event type before dispatch.
type IncomingEvent struct {
	Type EventType `json:"type"`

	// join_room
	TargetUserID int64 `json:"targetUserId,omitempty"`

	// send_message
	RoomID  string `json:"roomId,omitempty"`
	Content string `json:"content,omitempty"`
}

var (
	errTargetRequired  = errors.New("targetUserId is required")
	errRoomRequired    = errors.New("roomId is required")
	errContentRequired = errors.New("content is required")
	errUnknownEvent    = errors.New("unknown event type")
)

// Validate rejects malformed payloads at the boundary, before any handler runs.
func (e *IncomingEvent) Validate() error {
	switch e.Type {
	case EventJoinRoom:
		if e.TargetUserID <= 0 {
			return errTargetRequired
		}
	case EventSendMessage:
		if e.RoomID == "" {
			return errRoomRequired
		}
		if e.Content == "" {
			return errContentRequired
		}
	default:
		return errUnknownEvent
	}
	return nil
}

// OutgoingEvent is what the gateway sends to a client.
// Payload uses typed structs to avoid heap-heavy map[string]any.
type OutgoingEvent struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// RoomJoinedPayload is unicast to the joining connection only.
// Messages is null for a freshly created room.
type RoomJoinedPayload struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"createdAt"`
	Partner   model.UserPublic `json:"partner"`
	Messages  []model.Message  `json:"messages"`
}

// NewMessagePayload is broadcast to every connection in the room's group.
type NewMessagePayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	SenderID  int64     `json:"senderId"`
	RoomID    string    `json:"roomId"`
}
