// Package notify is the best-effort notification sink. Every failure here
// is logged and swallowed; a notification must never fail the operation
// that triggered it.
package notify

import (
	"socialgo/backend/internal/models"
	"socialgo/backend/internal/storage"
	"socialgo/backend/pkg/logger"
)

// PushFunc delivers an event to a user's live connection if one exists.
// The hub supplies it; absence of a connection is not an error.
type PushFunc func(userID string, ev models.ServerEvent)

type Service struct {
	store storage.Store
	push  PushFunc
}

func NewService(store storage.Store, push PushFunc) *Service {
	return &Service{store: store, push: push}
}

// Notify records a notification row for userID and pushes a badge event to
// their live connection when online.
func (s *Service) Notify(userID, kind string, actor models.PublicProfile, targetID, preview string) {
	n := &models.Notification{
		UserID:     userID,
		ActorID:    actor.ID,
		Verb:       kind,
		TargetType: "Message",
		TargetID:   targetID,
	}
	if err := s.store.SaveNotification(n); err != nil {
		logger.Warn().Err(err).Str("user", userID).Msg("failed to save notification")
	}

	if s.push == nil {
		return
	}
	s.push(userID, models.ServerEvent{
		Type: models.EventNotification,
		Data: models.NotificationPayload{
			Kind:    kind,
			From:    actor.Username,
			Preview: preview,
		},
	})
}
