package models_test

import (
	"testing"

	"socialgo/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUserPublic_FallsBackToUsername(t *testing.T) {
	u := &models.User{ID: "a1", Username: "alice"}
	assert.Equal(t, "alice", u.Public().DisplayName)

	u.DisplayName = "Alice"
	assert.Equal(t, "Alice", u.Public().DisplayName)
}

func TestMessage_ReadAndDeliveredHelpers(t *testing.T) {
	m := &models.Message{
		DeliveredTo: []string{"b1"},
		ReadBy:      []string{},
	}

	assert.True(t, m.DeliveredToUser("b1"))
	assert.False(t, m.DeliveredToUser("c1"))
	assert.False(t, m.ReadByUser("b1"))

	m.ReadBy = append(m.ReadBy, "b1")
	assert.True(t, m.ReadByUser("b1"))
}
