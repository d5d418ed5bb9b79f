package model

import "time"

// User is owned by the auth collaborator; the gateway only reads it
// (session validation, partner profiles, contact list).
type User struct {
	ID           int64     `json:"id"`
	Name         *string   `json:"name"`
	Email        string    `json:"email"`
	ProfileImage *string   `json:"profileImage"`
	Session      *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserPublic is the profile shape sent over the wire (partner info, contact list).
type UserPublic struct {
	ID           int64   `json:"id"`
	Name         *string `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:           u.ID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
	}
}
