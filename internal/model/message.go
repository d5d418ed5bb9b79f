package model

import "time"

type ReadStatus string

const (
	ReadStatusSent ReadStatus = "SENT"
	ReadStatusRead ReadStatus = "READ"
)

// Message is immutable once created; read-status transitions are handled
// elsewhere and never by the gateway.
type Message struct {
	ID              string     `json:"id"`
	ChatRoomID      string     `json:"roomId"`
	SenderID        int64      `json:"senderId"`
	Content         string     `json:"content"`
	ReadStatus      ReadStatus `json:"readStatus"`
	ReadByRecipient bool       `json:"readByRecipient"`
	CreatedAt       time.Time  `json:"createdAt"`

	// IsMyMessage is set when history is returned to a particular requester:
	// true iff SenderID equals the requesting user.
	IsMyMessage bool `json:"isMyMessage"`
}
