package chathub_test

import (
	"time"

	"socialgo/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of the storage.Store interface, used to drive
// the hub without a database.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) AppendMessage(senderID string, recipientIDs []string, text string, attachments []string) (*models.Message, error) {
	args := m.Called(senderID, recipientIDs, text, attachments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStore) MarkDelivered(messageID, recipientID string) error {
	args := m.Called(messageID, recipientID)
	return args.Error(0)
}

func (m *MockStore) MarkRead(conversationID, counterpartID, viewerID string) (int64, error) {
	args := m.Called(conversationID, counterpartID, viewerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) ListByConversation(conversationID string) ([]models.Message, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStore) ListForUser(userID string) ([]models.Message, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStore) CountUnread(userID string) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetUser(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) GetUserByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStore) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStore) SaveNotification(n *models.Notification) error {
	args := m.Called(n)
	return args.Error(0)
}

func (m *MockStore) IsUserBanned(userID string) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CheckRateLimit(userID string, limit int, window time.Duration) (bool, error) {
	args := m.Called(userID, limit, window)
	return args.Bool(0), args.Error(1)
}
