package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dkazarin/echoline-server/internal/core"
	"github.com/dkazarin/echoline-server/internal/store"
)

// UserHandlers provides HTTP handlers for user directory endpoints.
type UserHandlers struct {
	hub       *core.Hub
	directory store.UserDirectory
	log       *zerolog.Logger
}

// NewUserHandlers creates a new user handlers instance.
func NewUserHandlers(hub *core.Hub, directory store.UserDirectory, logger *zerolog.Logger) *UserHandlers {
	return &UserHandlers{
		hub:       hub,
		directory: directory,
		log:       logger,
	}
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// StatusUpdateRequest represents the explicit status update body.
type StatusUpdateRequest struct {
	IsOnline *bool `json:"isOnline" binding:"required"`
}

// ListUsers returns all other users with their presence state.
// GET /api/users
func (h *UserHandlers) ListUsers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.directory.ListUsers(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:       u.ID,
			Username: u.Username,
			IsOnline: u.IsOnline,
			LastSeen: u.LastSeen,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus persists an explicit presence change and broadcasts it.
// PUT /api/status
func (h *UserHandlers) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsOnline == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if cerr := h.hub.UpdateStatus(c.Request.Context(), userID, *req.IsOnline); cerr != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: cerr.Message})
		return
	}
	c.Status(http.StatusNoContent)
}
