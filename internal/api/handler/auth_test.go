package handler_test

import (
	"testing"

	"socialgo/backend/internal/api/handler"
	"socialgo/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

func newTestHandler() *handler.Handler {
	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTIssuer: "socialgo-test",
	}
	return handler.NewHandler(nil, nil, nil, cfg)
}

func TestToken_RoundTrip(t *testing.T) {
	h := newTestHandler()

	token, err := h.GenerateToken("a1", "alice")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := h.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "a1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
}

func TestToken_RejectsGarbage(t *testing.T) {
	h := newTestHandler()

	_, err := h.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestToken_RejectsWrongSecret(t *testing.T) {
	h := newTestHandler()

	token, err := h.GenerateToken("a1", "alice")
	assert.NoError(t, err)

	other := handler.NewHandler(nil, nil, nil, &config.Config{JWTSecret: "different-secret"})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}
