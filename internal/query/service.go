// Package query builds the REST read-models over the message store:
// conversation summaries, single threads and unread totals. It does not own
// any state; everything is derived per request.
package query

import (
	"socialgo/backend/internal/convo"
	"socialgo/backend/internal/models"
	"socialgo/backend/internal/storage"
	"socialgo/backend/pkg/logger"
)

// Pusher delivers events to live connections. The hub implements it; a nil
// Pusher simply skips live read-receipts.
type Pusher interface {
	PushToUser(userID string, ev models.ServerEvent) bool
}

type Service struct {
	store storage.Store
	live  Pusher
}

func NewService(store storage.Store, live Pusher) *Service {
	return &Service{store: store, live: live}
}

// ThreadView is the response shape for a single 1:1 thread.
type ThreadView struct {
	ConversationID string                 `json:"conversationId"`
	With           models.PublicProfile   `json:"with"`
	Messages       []models.ThreadMessage `json:"messages"`
}

// ListConversations returns one summary per conversation involving userID,
// newest last-message first. Grouping is strictly by the canonical
// conversation key, so a thread can never show up twice.
func (s *Service) ListConversations(userID string) ([]models.ConversationSummary, error) {
	msgs, err := s.store.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	byConv := make(map[string]*models.ConversationSummary)
	order := make([]string, 0)

	for i := range msgs {
		msg := &msgs[i]
		key := msg.ConversationID

		summary, seen := byConv[key]
		if !seen {
			counterpartID := msg.SenderID
			if counterpartID == userID {
				if len(msg.Recipients) == 0 {
					continue
				}
				counterpartID = msg.Recipients[0]
			}

			counterpart, err := s.store.GetUser(counterpartID)
			if err != nil {
				logger.Warn().Str("user", counterpartID).Msg("skipping conversation with unknown counterpart")
				continue
			}

			// Messages are scanned newest-first, so the first one seen
			// per conversation is its last message.
			summary = &models.ConversationSummary{
				ConversationID: key,
				With:           counterpart.Public(),
				LastMessage: models.LastMessage{
					Text:      msg.Text,
					SenderID:  msg.SenderID,
					CreatedAt: msg.CreatedAt,
				},
			}
			byConv[key] = summary
			order = append(order, key)
		}

		if msg.SenderID != userID && !msg.ReadByUser(userID) {
			summary.UnreadCount++
		}
	}

	summaries := make([]models.ConversationSummary, 0, len(order))
	for _, key := range order {
		summaries = append(summaries, *byConv[key])
	}
	return summaries, nil
}

// GetThread returns the full thread between viewerID and counterpartID,
// ascending by time, annotated for the viewer.
//
// Side effect, by contract: fetching a thread marks every message from the
// counterpart as read and, when they are online, pushes messages_read to
// them. Callers that want a preview without the read-receipt do not exist
// in this protocol.
func (s *Service) GetThread(viewerID, counterpartID string) (*ThreadView, error) {
	counterpart, err := s.store.GetUser(counterpartID)
	if err != nil {
		return nil, err
	}

	conversationID := convo.Key(viewerID, counterpartID)
	msgs, err := s.store.ListByConversation(conversationID)
	if err != nil {
		return nil, err
	}

	viewer := models.PublicProfile{ID: viewerID}
	if u, err := s.store.GetUser(viewerID); err == nil {
		viewer = u.Public()
	}
	counterpartProfile := counterpart.Public()

	thread := make([]models.ThreadMessage, 0, len(msgs))
	for i := range msgs {
		msg := &msgs[i]

		sender := counterpartProfile
		isMine := msg.SenderID == viewerID
		if isMine {
			sender = viewer
		}

		thread = append(thread, models.ThreadMessage{
			ID:          msg.ID,
			Sender:      sender,
			Text:        msg.Text,
			Attachments: msg.Attachments,
			CreatedAt:   msg.CreatedAt,
			IsMine:      isMine,
			Delivered:   len(msg.DeliveredTo) > 0,
			Read:        len(msg.ReadBy) > 0,
		})
	}

	rows, err := s.store.MarkRead(conversationID, counterpartID, viewerID)
	if err != nil {
		// The thread itself loaded; losing the read-receipt is not worth
		// failing the request over.
		logger.Error().Err(err).Str("conversation", conversationID).Msg("failed to mark thread read")
	} else if rows > 0 && s.live != nil {
		s.live.PushToUser(counterpartID, models.ServerEvent{
			Type: models.EventMessagesRead,
			Data: models.ReadPayload{ConversationID: conversationID, ReadBy: viewerID},
		})
	}

	return &ThreadView{
		ConversationID: conversationID,
		With:           counterpartProfile,
		Messages:       thread,
	}, nil
}

// UnreadCount returns the viewer's total unread messages across all
// conversations.
func (s *Service) UnreadCount(userID string) (int64, error) {
	return s.store.CountUnread(userID)
}
