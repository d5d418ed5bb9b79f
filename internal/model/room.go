package model

import "time"

// Room is a one-to-one conversation. (User1ID, User2ID) is stored as an
// ordered tuple but represents an unordered pair: at most one room exists
// per pair, enforced by a unique index on (LEAST, GREATEST) of the two ids.
type Room struct {
	ID               string     `json:"id"`
	User1ID          int64      `json:"user1Id"`
	User2ID          int64      `json:"user2Id"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	LastMessageAt    *time.Time `json:"lastMessageAt"`
	User1UnreadCount int        `json:"user1UnreadCount"`
	User2UnreadCount int        `json:"user2UnreadCount"`
}

// PartnerID returns the participant that is not selfID.
func (r *Room) PartnerID(selfID int64) int64 {
	if r.User1ID == selfID {
		return r.User2ID
	}
	return r.User1ID
}

// HasParticipant reports whether userID is one of the room's two users.
func (r *Room) HasParticipant(userID int64) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// UnreadCountFor returns the unread counter belonging to userID.
func (r *Room) UnreadCountFor(userID int64) int {
	if r.User1ID == userID {
		return r.User1UnreadCount
	}
	return r.User2UnreadCount
}
