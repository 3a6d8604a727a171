package chathub

import (
	"errors"
	"time"

	"socialgo/backend/internal/models"
	"socialgo/backend/internal/notify"
	"socialgo/backend/internal/presence"
	"socialgo/backend/internal/storage"
	"socialgo/backend/pkg/apperr"
	"socialgo/backend/pkg/logger"
)

// typingThrottle is the minimum interval between typing forwards per
// sender, to keep keystroke spam off the wire.
const typingThrottle = 3 * time.Second

// InboundEvent pairs a decoded client event with the session it arrived on.
type InboundEvent struct {
	Client Client
	Event  models.ClientEvent
}

// ManagerService is the hub. A single goroutine runs the protocol loop:
// every register, unregister and client event is handled to completion
// before the next one, which serializes presence changes and preserves
// per-conversation append order.
type ManagerService struct {
	Registry *presence.Registry

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan InboundEvent

	Storage  storage.Store
	notifier *notify.Service

	// lastTyping is only touched from the hub goroutine.
	lastTyping map[string]time.Time
}

func NewManagerService(s storage.Store) *ManagerService {
	m := &ManagerService{
		Registry:     presence.NewRegistry(),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan InboundEvent),
		Storage:      s,
		lastTyping:   make(map[string]time.Time),
	}
	m.notifier = notify.NewService(s, func(userID string, ev models.ServerEvent) {
		m.PushToUser(userID, ev)
	})
	return m
}

// Run is the hub's main loop. Start it exactly once, in its own goroutine.
func (m *ManagerService) Run() {
	logger.Info().Msg("chat hub started")

	for {
		select {
		case c := <-m.RegisterCh:
			m.handleRegister(c)
		case c := <-m.UnregisterCh:
			m.handleUnregister(c)
		case ev := <-m.EventCh:
			m.handleEvent(ev)
		}
	}
}

func (m *ManagerService) handleRegister(c Client) {
	evicted := m.Registry.Register(c.GetUserID(), c)
	if evicted != nil {
		// Second login for the same user: the old session keeps its
		// transport but is no longer addressable. Its eventual
		// disconnect is handle-checked in handleUnregister.
		logger.Info().Str("user", c.GetUserID()).Msg("replaced existing session")
	}

	logger.Info().Str("user", c.GetUserID()).Str("username", c.GetUsername()).Msg("user connected")

	m.broadcastExcept(c.GetUserID(), models.ServerEvent{
		Type: models.EventUserOnline,
		Data: models.PresencePayload{UserID: c.GetUserID(), Username: c.GetUsername()},
	})
	m.broadcast(models.ServerEvent{
		Type: models.EventOnlineUsers,
		Data: m.Registry.ListOnline(),
	})
}

func (m *ManagerService) handleUnregister(c Client) {
	removed := m.Registry.Unregister(c.GetUserID(), c)
	c.Close()

	if !removed {
		// Stale disconnect of an evicted session; the newer session's
		// registry entry stays put and no presence change is announced.
		return
	}

	logger.Info().Str("user", c.GetUserID()).Msg("user disconnected")

	m.broadcast(models.ServerEvent{
		Type: models.EventUserOffline,
		Data: models.PresencePayload{UserID: c.GetUserID()},
	})
	m.broadcast(models.ServerEvent{
		Type: models.EventOnlineUsers,
		Data: m.Registry.ListOnline(),
	})
}

func (m *ManagerService) handleEvent(in InboundEvent) {
	c := in.Client
	ev := in.Event

	switch ev.Type {
	case models.EventTyping:
		m.handleTyping(c, ev)

	case models.EventSendMessage:
		payload, err := m.SendMessage(c.GetUserID(), ev.RecipientID, ev.Text, ev.Attachments)
		if err != nil {
			c.Send(models.ServerEvent{
				Type: models.EventMessageError,
				Data: models.ErrorPayload{Error: userFacing(err)},
			})
			return
		}
		c.Send(models.ServerEvent{Type: models.EventMessageSent, Data: payload})
		if m.DeliverLive(payload, ev.RecipientID) {
			c.Send(models.ServerEvent{
				Type: models.EventMessageDelivered,
				Data: models.DeliveredPayload{MessageID: payload.ID},
			})
		}

	case models.EventMarkRead:
		rows, err := m.Storage.MarkRead(ev.ConversationID, ev.SenderID, c.GetUserID())
		if err != nil {
			logger.Error().Err(err).Str("conversation", ev.ConversationID).Msg("mark_read failed")
			return
		}
		if rows > 0 {
			m.PushToUser(ev.SenderID, models.ServerEvent{
				Type: models.EventMessagesRead,
				Data: models.ReadPayload{ConversationID: ev.ConversationID, ReadBy: c.GetUserID()},
			})
		}

	default:
		logger.Warn().Str("user", c.GetUserID()).Str("type", ev.Type).Msg("unknown client event")
	}
}

func (m *ManagerService) handleTyping(c Client, ev models.ClientEvent) {
	if ev.RecipientID == "" {
		return
	}

	if last, ok := m.lastTyping[c.GetUserID()]; ok && time.Since(last) < typingThrottle {
		return
	}
	m.lastTyping[c.GetUserID()] = time.Now()

	m.PushToUser(ev.RecipientID, models.ServerEvent{
		Type: models.EventUserTyping,
		Data: models.TypingPayload{
			UserID:   c.GetUserID(),
			Username: c.GetUsername(),
			IsTyping: ev.IsTyping,
		},
	})
}

// SendMessage persists a message and fires the best-effort notification
// sink. It is shared by the live path and the REST send endpoint so both
// derive the conversation key identically. Live delivery is a separate
// step, see DeliverLive.
func (m *ManagerService) SendMessage(senderID, recipientID, text string, attachments []string) (models.MessagePayload, error) {
	if recipientID == senderID {
		return models.MessagePayload{}, apperr.BadRequest("cannot message yourself")
	}

	msg, err := m.Storage.AppendMessage(senderID, []string{recipientID}, text, attachments)
	if err != nil {
		return models.MessagePayload{}, err
	}

	sender := m.senderProfile(senderID)
	payload := models.MessagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Sender:         sender,
		Text:           msg.Text,
		Attachments:    msg.Attachments,
		CreatedAt:      msg.CreatedAt,
	}

	m.notifier.Notify(recipientID, "message", sender, msg.ID, preview(text))

	return payload, nil
}

// DeliverLive pushes new_message to the recipient's session if one is
// registered and records the delivery. Immediate-or-never: an offline
// recipient gets nothing here and picks the message up via the query
// service later.
func (m *ManagerService) DeliverLive(payload models.MessagePayload, recipientID string) bool {
	conn, ok := m.Registry.Lookup(recipientID)
	if !ok {
		return false
	}
	client, ok := conn.(Client)
	if !ok {
		return false
	}

	if !client.Send(models.ServerEvent{Type: models.EventNewMessage, Data: payload}) {
		return false
	}

	if err := m.Storage.MarkDelivered(payload.ID, recipientID); err != nil {
		logger.Error().Err(err).Str("message", payload.ID).Msg("failed to record delivery")
	}
	return true
}

// PushToUser sends ev to userID's live session, if any. Reports whether the
// event was queued.
func (m *ManagerService) PushToUser(userID string, ev models.ServerEvent) bool {
	conn, ok := m.Registry.Lookup(userID)
	if !ok {
		return false
	}
	client, ok := conn.(Client)
	if !ok {
		return false
	}
	return client.Send(ev)
}

func (m *ManagerService) broadcast(ev models.ServerEvent) {
	for _, userID := range m.Registry.ListOnline() {
		m.PushToUser(userID, ev)
	}
}

func (m *ManagerService) broadcastExcept(userID string, ev models.ServerEvent) {
	for _, id := range m.Registry.ListOnline() {
		if id == userID {
			continue
		}
		m.PushToUser(id, ev)
	}
}

func (m *ManagerService) senderProfile(senderID string) models.PublicProfile {
	user, err := m.Storage.GetUser(senderID)
	if err != nil {
		// The session was authenticated, so the ID is trusted even when
		// the directory lookup fails.
		return models.PublicProfile{ID: senderID}
	}
	return user.Public()
}

func userFacing(err error) string {
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "Failed to send message"
}

func preview(text string) string {
	const max = 100
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
