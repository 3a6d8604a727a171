package query_test

import (
	"testing"
	"time"

	"socialgo/backend/internal/models"
	"socialgo/backend/internal/query"
	"socialgo/backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

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

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) PushToUser(userID string, ev models.ServerEvent) bool {
	args := m.Called(userID, ev)
	return args.Bool(0)
}

func msgAt(id, conv, sender, recipient, text string, at time.Time, readBy ...string) models.Message {
	return models.Message{
		ID:             id,
		ConversationID: conv,
		SenderID:       sender,
		Recipients:     []string{recipient},
		Text:           text,
		DeliveredTo:    []string{},
		ReadBy:         readBy,
		CreatedAt:      at,
	}
}

func alice() *models.User {
	return &models.User{ID: "a1", Username: "alice", DisplayName: "Alice"}
}

func bob() *models.User {
	return &models.User{ID: "b1", Username: "bob", DisplayName: "Bob"}
}

func TestListConversations_UnreadAndLastMessage(t *testing.T) {
	store := new(MockStore)
	now := time.Now()

	// ListForUser returns newest first.
	store.On("ListForUser", "b1").Return([]models.Message{
		msgAt("m2", "a1:b1", "a1", "b1", "hello", now),
		msgAt("m1", "a1:b1", "b1", "a1", "hi alice", now.Add(-time.Minute)),
	}, nil)
	store.On("GetUser", "a1").Return(alice(), nil)

	s := query.NewService(store, nil)
	convs, err := s.ListConversations("b1")

	assert.NoError(t, err)
	assert.Len(t, convs, 1)
	assert.Equal(t, "a1:b1", convs[0].ConversationID)
	assert.Equal(t, "a1", convs[0].With.ID)
	assert.Equal(t, "hello", convs[0].LastMessage.Text)
	assert.Equal(t, 1, convs[0].UnreadCount)
}

func TestListConversations_ReadMessagesNotCounted(t *testing.T) {
	store := new(MockStore)
	now := time.Now()

	store.On("ListForUser", "b1").Return([]models.Message{
		msgAt("m2", "a1:b1", "a1", "b1", "hello", now, "b1"),
		msgAt("m1", "a1:b1", "a1", "b1", "earlier", now.Add(-time.Minute), "b1"),
	}, nil)
	store.On("GetUser", "a1").Return(alice(), nil)

	s := query.NewService(store, nil)
	convs, err := s.ListConversations("b1")

	assert.NoError(t, err)
	assert.Len(t, convs, 1)
	assert.Equal(t, 0, convs[0].UnreadCount)
}

func TestListConversations_OrderedByLastMessage(t *testing.T) {
	store := new(MockStore)
	now := time.Now()

	carol := &models.User{ID: "c1", Username: "carol"}
	store.On("ListForUser", "b1").Return([]models.Message{
		msgAt("m3", "b1:c1", "c1", "b1", "newest thread", now),
		msgAt("m2", "a1:b1", "a1", "b1", "older thread", now.Add(-time.Hour)),
		msgAt("m1", "b1:c1", "b1", "c1", "first", now.Add(-2*time.Hour)),
	}, nil)
	store.On("GetUser", "c1").Return(carol, nil)
	store.On("GetUser", "a1").Return(alice(), nil)

	s := query.NewService(store, nil)
	convs, err := s.ListConversations("b1")

	assert.NoError(t, err)
	assert.Len(t, convs, 2)
	// One row per canonical key, newest conversation first.
	assert.Equal(t, "b1:c1", convs[0].ConversationID)
	assert.Equal(t, "a1:b1", convs[1].ConversationID)
}

func TestGetThread_AnnotatesAndMarksRead(t *testing.T) {
	store := new(MockStore)
	pusher := new(mockPusher)
	now := time.Now()

	unread := msgAt("m2", "a1:b1", "a1", "b1", "hello", now)
	mine := msgAt("m1", "a1:b1", "b1", "a1", "hi alice", now.Add(-time.Minute))
	mine.DeliveredTo = []string{"a1"}
	mine.ReadBy = []string{"a1"}

	store.On("GetUser", "a1").Return(alice(), nil)
	store.On("GetUser", "b1").Return(bob(), nil)
	store.On("ListByConversation", "a1:b1").Return([]models.Message{mine, unread}, nil)
	store.On("MarkRead", "a1:b1", "a1", "b1").Return(int64(1), nil)
	pusher.On("PushToUser", "a1", mock.AnythingOfType("models.ServerEvent")).Return(true)

	s := query.NewService(store, pusher)
	thread, err := s.GetThread("b1", "a1")

	assert.NoError(t, err)
	assert.Equal(t, "a1:b1", thread.ConversationID)
	assert.Equal(t, "a1", thread.With.ID)
	assert.Len(t, thread.Messages, 2)

	assert.True(t, thread.Messages[0].IsMine)
	assert.True(t, thread.Messages[0].Delivered)
	assert.True(t, thread.Messages[0].Read)

	assert.False(t, thread.Messages[1].IsMine)
	assert.Equal(t, "a1", thread.Messages[1].Sender.ID)

	// Viewing the thread is the read-receipt.
	store.AssertCalled(t, "MarkRead", "a1:b1", "a1", "b1")
	pusher.AssertCalled(t, "PushToUser", "a1", mock.AnythingOfType("models.ServerEvent"))
}

func TestGetThread_NothingNewToRead(t *testing.T) {
	store := new(MockStore)
	pusher := new(mockPusher)

	store.On("GetUser", "a1").Return(alice(), nil)
	store.On("GetUser", "b1").Return(bob(), nil)
	store.On("ListByConversation", "a1:b1").Return([]models.Message{}, nil)
	store.On("MarkRead", "a1:b1", "a1", "b1").Return(int64(0), nil)

	s := query.NewService(store, pusher)
	thread, err := s.GetThread("b1", "a1")

	assert.NoError(t, err)
	assert.Empty(t, thread.Messages)
	pusher.AssertNotCalled(t, "PushToUser", mock.Anything, mock.Anything)
}

func TestGetThread_UnknownCounterpart(t *testing.T) {
	store := new(MockStore)

	store.On("GetUser", "nobody").Return(nil, apperr.ErrNotFound)

	s := query.NewService(store, nil)
	_, err := s.GetThread("b1", "nobody")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUnreadCount(t *testing.T) {
	store := new(MockStore)
	store.On("CountUnread", "b1").Return(int64(3), nil)

	s := query.NewService(store, nil)
	count, err := s.UnreadCount("b1")

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
