package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/flashsend/relay/internal/push"
	"github.com/flashsend/relay/internal/service/reply"
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	svc *reply.Service
	log *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(svc *reply.Service, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		svc: svc,
		log: logger,
	}
}

// ReplyRequest represents the reply request body.
type ReplyRequest struct {
	SendersUserID    string `json:"sendersUserId" binding:"required"`
	RecipientsUserID string `json:"recipientsUserId" binding:"required"`
	RoomID           string `json:"roomId" binding:"required"`
	ReplyText        string `json:"replyText" binding:"required"`
}

// MarkAsReadRequest represents the markAsRead request body.
type MarkAsReadRequest struct {
	SendersUserID string `json:"sendersUserId" binding:"required"`
	RoomID        string `json:"roomId" binding:"required"`
}

// SendNotificationRequest represents the sendNotification request body.
type SendNotificationRequest struct {
	RecipientsToken  string `json:"recipientsToken" binding:"required"`
	Title            string `json:"title"`
	Body             string `json:"body"`
	RoomID           string `json:"roomId"`
	RecipientsUserID string `json:"recipientsUserId"`
	SendersUserID    string `json:"sendersUserId"`
	ProfileURL       string `json:"profileUrl"`
}

// SuccessResponse represents a success response body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Reply handles the end-to-end reply flow.
// POST /api/reply
func (h *APIHandlers) Reply(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid reply request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	_, err := h.svc.Reply(c.Request.Context(), reply.Input{
		SenderID:    req.SendersUserID,
		RecipientID: req.RecipientsUserID,
		RoomID:      req.RoomID,
		ReplyText:   req.ReplyText,
	})
	if err != nil {
		if errors.Is(err, reply.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "one or both users not found"})
			return
		}
		h.log.Error().Err(err).Str("room_id", req.RoomID).Msg("reply failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to send reply"})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Reply sent successfully"})
}

// MarkAsRead flips unread messages from other senders in a room.
// POST /api/markAsRead
func (h *APIHandlers) MarkAsRead(c *gin.Context) {
	var req MarkAsReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid markAsRead request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	count, err := h.svc.MarkAsRead(c.Request.Context(), req.RoomID, req.SendersUserID)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", req.RoomID).Msg("markAsRead failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to mark messages as read"})
		return
	}

	msg := "No unread messages found"
	if count > 0 {
		msg = fmt.Sprintf("Marked %d messages as read", count)
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: msg})
}

// SendNotification dispatches a push for an externally persisted event.
// POST /api/sendNotification
func (h *APIHandlers) SendNotification(c *gin.Context) {
	var req SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid sendNotification request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	// Dispatch outcome is deliberately discarded: push delivery is
	// best-effort and must not fail the request.
	_ = h.svc.SendNotification(c.Request.Context(), req.RecipientsToken, push.Notification{
		Title:       req.Title,
		Body:        req.Body,
		RoomID:      req.RoomID,
		RecipientID: req.RecipientsUserID,
		SenderID:    req.SendersUserID,
		ProfileURL:  req.ProfileURL,
	})

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "Notification sent successfully"})
}

// Health reports service liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
