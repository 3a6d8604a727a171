package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a best-effort badge record created alongside a message
// send. Failures to write one never fail the send itself.
type Notification struct {
	ID         string `gorm:"primaryKey" json:"id"`
	UserID     string `gorm:"type:text;not null;index" json:"userId"`
	ActorID    string `gorm:"type:text;not null" json:"actorId"`
	Verb       string `gorm:"type:text;not null" json:"verb"`
	TargetType string `gorm:"type:text" json:"targetType"`
	TargetID   string `gorm:"type:text" json:"targetId"`
	Read       bool   `gorm:"default:false" json:"read"`

	CreatedAt time.Time `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
