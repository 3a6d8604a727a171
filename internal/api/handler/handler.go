package handler

import (
	"errors"

	"socialgo/backend/internal/chathub"
	"socialgo/backend/internal/config"
	"socialgo/backend/internal/query"
	"socialgo/backend/internal/storage"
	"socialgo/backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Handler wires the hub, storage and read-side into gin routes.
type Handler struct {
	Hub     *chathub.ManagerService
	Storage storage.Store
	Query   *query.Service
	Cfg     *config.Config
}

func NewHandler(hub *chathub.ManagerService, store storage.Store, q *query.Service, cfg *config.Config) *Handler {
	return &Handler{
		Hub:     hub,
		Storage: store,
		Query:   q,
		Cfg:     cfg,
	}
}

// respondError maps apperr values to their HTTP status and everything else
// to a generic 500.
func respondError(c *gin.Context, err error) {
	var ae *apperr.AppError
	if errors.As(err, &ae) {
		c.JSON(ae.Code, gin.H{"error": ae.Message})
		return
	}
	c.JSON(apperr.ErrInternalServer.Code, gin.H{"error": apperr.ErrInternalServer.Message})
}
