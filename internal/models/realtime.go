package models

import "time"

// Inbound event types accepted from a live connection.
const (
	EventTyping      = "typing"
	EventSendMessage = "send_message"
	EventMarkRead    = "mark_read"
)

// Outbound event types pushed to live connections.
const (
	EventMessageSent      = "message_sent"
	EventNewMessage       = "new_message"
	EventMessageDelivered = "message_delivered"
	EventMessageError     = "message_error"
	EventUserTyping       = "user_typing"
	EventMessagesRead     = "messages_read"
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventOnlineUsers      = "online_users"
	EventNotification     = "notification"
)

// ClientEvent is the flat envelope a live connection sends. Type selects the
// operation; the other fields are read per type.
type ClientEvent struct {
	Type string `json:"type"`

	// send_message, typing
	RecipientID string   `json:"recipient_id,omitempty"`
	Text        string   `json:"text,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	IsTyping    bool     `json:"is_typing,omitempty"`

	// mark_read
	ConversationID string `json:"conversation_id,omitempty"`
	SenderID       string `json:"sender_id,omitempty"`
}

// ServerEvent is the envelope for everything pushed to a live connection.
type ServerEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// MessagePayload is the wire form of a message for message_sent and
// new_message events.
type MessagePayload struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversationId"`
	Sender         PublicProfile `json:"sender"`
	Text           string        `json:"text"`
	Attachments    []string      `json:"attachments,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	Delivered      bool          `json:"delivered"`
	Read           bool          `json:"read"`
}

type DeliveredPayload struct {
	MessageID string `json:"messageId"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

type TypingPayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type ReadPayload struct {
	ConversationID string `json:"conversationId"`
	ReadBy         string `json:"readBy"`
}

type PresencePayload struct {
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

type NotificationPayload struct {
	Kind    string `json:"kind"`
	From    string `json:"from"`
	Preview string `json:"preview,omitempty"`
}
