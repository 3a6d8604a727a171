package chathub_test

import (
	"testing"
	"time"

	"socialgo/backend/internal/models"
)

type mockClient struct {
	userID   string
	username string

	// Events receives everything the hub pushes to this session.
	Events chan models.ServerEvent
}

func newMockClient(userID, username string) *mockClient {
	return &mockClient{
		userID:   userID,
		username: username,
		Events:   make(chan models.ServerEvent, 32),
	}
}

func (c *mockClient) GetUserID() string   { return c.userID }
func (c *mockClient) GetUsername() string { return c.username }

func (c *mockClient) Send(ev models.ServerEvent) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}

func (c *mockClient) Run()   {}
func (c *mockClient) Close() {}

// nextEventOfType drains the client's events until one of the wanted type
// appears, skipping presence chatter.
func nextEventOfType(t *testing.T, c *mockClient, eventType string) models.ServerEvent {
	t.Helper()

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-c.Events:
			if ev.Type == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event for %s", eventType, c.userID)
			return models.ServerEvent{}
		}
	}
}

// assertNoEventOfType asserts the client received no event of the given
// type among everything currently queued.
func assertNoEventOfType(t *testing.T, c *mockClient, eventType string) {
	t.Helper()

	for {
		select {
		case ev := <-c.Events:
			if ev.Type == eventType {
				t.Fatalf("unexpected %q event for %s", eventType, c.userID)
			}
		default:
			return
		}
	}
}
