package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // pq.StringArray for the text[] columns
	"gorm.io/gorm"
)

// Message is a persisted direct message. The record is immutable after
// creation except for DeliveredTo and ReadBy, which only ever grow.
// CreatedAt is the sole ordering key within a conversation.
type Message struct {
	ID string `gorm:"primaryKey" json:"id"`

	// ConversationID is always derived via convo.Key from the sorted
	// participant pair, never built at call sites.
	ConversationID string `gorm:"not null;index:idx_conv_created" json:"conversationId"`

	SenderID   string         `gorm:"type:text;not null;index" json:"senderId"`
	Recipients pq.StringArray `gorm:"type:text[];not null" json:"recipients"`

	Text        string         `gorm:"type:text" json:"text"`
	Attachments pq.StringArray `gorm:"type:text[]" json:"attachments"`

	// DeliveredTo holds recipient IDs the message was pushed to over a live
	// connection. ReadBy holds recipient IDs that have viewed it.
	DeliveredTo pq.StringArray `gorm:"type:text[]" json:"deliveredTo"`
	ReadBy      pq.StringArray `gorm:"type:text[]" json:"readBy"`

	CreatedAt time.Time `gorm:"index:idx_conv_created" json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// DeliveredToUser reports whether the message was live-pushed to userID.
func (m *Message) DeliveredToUser(userID string) bool {
	for _, id := range m.DeliveredTo {
		if id == userID {
			return true
		}
	}
	return false
}

// ReadByUser reports whether userID has viewed the message.
func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
