package handler

import (
	"net/http"
	"time"

	"socialgo/backend/pkg/apperr"
	"socialgo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// GetConversations lists the caller's conversation summaries, newest first.
func (h *Handler) GetConversations(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	conversations, err := h.Query.ListConversations(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetThread returns the full thread with another user.
//
// Viewing a thread marks the counterpart's messages as read; that is part
// of this endpoint's contract, not an incidental side effect.
func (h *Handler) GetThread(c *gin.Context) {
	userID := c.MustGet("userId").(string)
	otherUserID := c.Param("userId")

	if otherUserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	thread, err := h.Query.GetThread(userID, otherUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

// GetUnreadCount returns the caller's total unread-message badge.
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	count, err := h.Query.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

type sendMessageRequest struct {
	Text        string   `json:"text"`
	Attachments []string `json:"attachments"`
}

// SendMessage is the synchronous counterpart of the live send_message
// event: same key derivation, same persistence path, and the same live-push
// attempt when the recipient is online.
func (h *Handler) SendMessage(c *gin.Context) {
	senderID := c.MustGet("userId").(string)
	recipientID := c.Param("userId")

	if recipientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if h.Cfg.SendRateLimit > 0 {
		allowed, err := h.Storage.CheckRateLimit(senderID, h.Cfg.SendRateLimit, time.Minute)
		if err != nil {
			logger.Warn().Err(err).Str("user", senderID).Msg("rate limit check failed, allowing send")
		} else if !allowed {
			c.JSON(apperr.ErrRateLimit.Code, gin.H{"error": apperr.ErrRateLimit.Message})
			return
		}
	}

	payload, err := h.Hub.SendMessage(senderID, recipientID, req.Text, req.Attachments)
	if err != nil {
		respondError(c, err)
		return
	}

	delivered := h.Hub.DeliverLive(payload, recipientID)

	c.JSON(http.StatusOK, gin.H{"message": payload, "delivered": delivered})
}
