package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is owned by the identity service; the messaging core only reads it
// to resolve counterpart display info.
type User struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// BeforeCreate generates a UUID when the ID is not set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// PublicProfile is the user shape embedded in message and conversation
// payloads sent to clients.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

func (u *User) Public() PublicProfile {
	name := u.DisplayName
	if name == "" {
		name = u.Username
	}
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: name,
		AvatarURL:   u.AvatarURL,
	}
}
