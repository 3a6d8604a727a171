package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialgo/backend/internal/convo"
	"socialgo/backend/internal/models"
	"socialgo/backend/pkg/apperr"
	"socialgo/backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Validation failures surfaced by AppendMessage. Never persisted.
var (
	ErrEmptyMessage = apperr.BadRequest("message text and attachments are both empty")
	ErrNoRecipients = apperr.BadRequest("message has no recipients")
)

// Store is the persistence contract the hub and read-side depend on.
type Store interface {
	AppendMessage(senderID string, recipientIDs []string, text string, attachments []string) (*models.Message, error)
	MarkDelivered(messageID, recipientID string) error
	MarkRead(conversationID, counterpartID, viewerID string) (int64, error)
	ListByConversation(conversationID string) ([]models.Message, error)
	ListForUser(userID string) ([]models.Message, error)
	CountUnread(userID string) (int64, error)

	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	SaveUser(user *models.User) error

	SaveNotification(n *models.Notification) error

	IsUserBanned(userID string) (bool, error)
	CheckRateLimit(userID string, limit int, window time.Duration) (bool, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewService constructor
func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// AppendMessage validates, derives the conversation key and persists a new
// message with empty delivery/read state. CreatedAt is assigned here and is
// the ordering key for the whole conversation.
func (s *Service) AppendMessage(senderID string, recipientIDs []string, text string, attachments []string) (*models.Message, error) {
	if len(recipientIDs) == 0 {
		return nil, ErrNoRecipients
	}
	if text == "" && len(attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	// 1:1 today; the model carries a recipient set so group threads stay
	// representable without a schema change.
	msg := &models.Message{
		ConversationID: convo.Key(senderID, recipientIDs[0]),
		SenderID:       senderID,
		Recipients:     recipientIDs,
		Text:           text,
		Attachments:    attachments,
		DeliveredTo:    []string{},
		ReadBy:         []string{},
		CreatedAt:      time.Now(),
	}

	if err := s.DB.Create(msg).Error; err != nil {
		logger.Error().Err(err).Str("conversation", msg.ConversationID).Msg("failed to append message")
		return nil, apperr.Internal("failed to store message")
	}

	s.invalidateUnread(recipientIDs...)
	return msg, nil
}

// MarkDelivered records a live push to recipientID. A single conditional
// UPDATE, so repeated calls leave delivered_to unchanged.
func (s *Service) MarkDelivered(messageID, recipientID string) error {
	err := s.DB.Exec(
		`UPDATE messages
		 SET delivered_to = array_append(delivered_to, ?)
		 WHERE id = ? AND NOT (delivered_to @> ARRAY[?]::text[])`,
		recipientID, messageID, recipientID,
	).Error
	if err != nil {
		logger.Error().Err(err).Str("message", messageID).Msg("failed to mark delivered")
		return apperr.Internal("failed to mark delivered")
	}
	return nil
}

// MarkRead inserts viewerID into read_by for every message in the
// conversation sent by counterpartID and not yet read by the viewer.
// One statement, atomic per matched row: concurrent identical calls from
// several devices converge on the same state. Returns rows affected.
func (s *Service) MarkRead(conversationID, counterpartID, viewerID string) (int64, error) {
	res := s.DB.Exec(
		`UPDATE messages
		 SET read_by = array_append(read_by, ?)
		 WHERE conversation_id = ? AND sender_id = ? AND NOT (read_by @> ARRAY[?]::text[])`,
		viewerID, conversationID, counterpartID, viewerID,
	)
	if res.Error != nil {
		logger.Error().Err(res.Error).Str("conversation", conversationID).Msg("failed to mark read")
		return 0, apperr.Internal("failed to mark read")
	}

	if res.RowsAffected > 0 {
		s.invalidateUnread(viewerID)
	}
	return res.RowsAffected, nil
}

// ListByConversation returns every message of the conversation ascending by
// creation time.
func (s *Service) ListByConversation(conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		logger.Error().Err(err).Str("conversation", conversationID).Msg("failed to load conversation")
		return nil, apperr.Internal("failed to load conversation")
	}
	return msgs, nil
}

// ListForUser returns every message the user sent or received, newest
// first. The query service groups these into conversation summaries.
func (s *Service) ListForUser(userID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("sender_id = ? OR ? = ANY(recipients)", userID, userID).
		Order("created_at desc").
		Find(&msgs).Error
	if err != nil {
		logger.Error().Err(err).Str("user", userID).Msg("failed to load user messages")
		return nil, apperr.Internal("failed to load messages")
	}
	return msgs, nil
}

// CountUnread returns the user's total unread-message count across all
// conversations. The result is cached in redis for a short period and
// invalidated on append/markRead.
func (s *Service) CountUnread(userID string) (int64, error) {
	key := unreadKey(userID)
	if cached, err := s.Redis.Get(s.Ctx, key).Int64(); err == nil {
		return cached, nil
	}

	var count int64
	err := s.DB.Raw(
		`SELECT count(*) FROM messages
		 WHERE ? = ANY(recipients) AND sender_id <> ? AND NOT (read_by @> ARRAY[?]::text[])`,
		userID, userID, userID,
	).Scan(&count).Error
	if err != nil {
		logger.Error().Err(err).Str("user", userID).Msg("failed to count unread")
		return 0, apperr.Internal("failed to count unread messages")
	}

	if err := s.Redis.Set(s.Ctx, key, count, time.Minute).Err(); err != nil {
		logger.Warn().Err(err).Msg("unread cache write failed")
	}
	return count, nil
}

func (s *Service) invalidateUnread(userIDs ...string) {
	for _, id := range userIDs {
		if err := s.Redis.Del(s.Ctx, unreadKey(id)).Err(); err != nil {
			logger.Warn().Err(err).Str("user", id).Msg("unread cache invalidation failed")
		}
	}
}

func unreadKey(userID string) string {
	return "unread:" + userID
}

// GetUser resolves a user by ID. Returns apperr.ErrNotFound when absent.
func (s *Service) GetUser(id string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user")
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user")
	}
	return &user, nil
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) SaveNotification(n *models.Notification) error {
	return s.DB.Create(n).Error
}

// IsUserBanned checks the ban flag in redis. Absence of the key means not
// banned.
func (s *Service) IsUserBanned(userID string) (bool, error) {
	status, err := s.Redis.Get(s.Ctx, "ban:"+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// CheckRateLimit counts sends per user within the window. Returns false
// once the limit is exceeded.
func (s *Service) CheckRateLimit(userID string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("rate_limit:%s", userID)
	count, err := s.Redis.Incr(s.Ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		s.Redis.Expire(s.Ctx, key, window)
	}
	return count <= int64(limit), nil
}
