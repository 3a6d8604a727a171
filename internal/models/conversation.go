package models

import "time"

// ConversationSummary is a derived read-model: one row per conversation a
// user participates in, built by grouping messages on the canonical key.
// It is never stored.
type ConversationSummary struct {
	ConversationID string        `json:"conversationId"`
	With           PublicProfile `json:"with"`
	LastMessage    LastMessage   `json:"lastMessage"`
	UnreadCount    int           `json:"unreadCount"`
}

type LastMessage struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ThreadMessage is a message annotated for one viewer of a thread.
type ThreadMessage struct {
	ID          string        `json:"id"`
	Sender      PublicProfile `json:"sender"`
	Text        string        `json:"text"`
	Attachments []string      `json:"attachments,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	IsMine      bool          `json:"isMine"`
	Delivered   bool          `json:"delivered"`
	Read        bool          `json:"read"`
}
