package chat

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"montafacil/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers chat routes under the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/services/:id/messages")
	{
		g.GET("", h.ListMessages)
		g.POST("", h.SendMessage)
		g.POST("/read", h.MarkAsRead)
		g.GET("/unread-count", h.UnreadCount)
		g.DELETE("/:messageId", h.DeleteMessage)
	}

	rg.GET("/messages/unread-count", h.TotalUnreadCount)
}

func (h *Handler) SendMessage(c *gin.Context) {
	userID := c.GetInt64("user_id")
	serviceID, ok := parseServiceID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	msg, err := h.service.Send(c.Request.Context(), serviceID, userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) ListMessages(c *gin.Context) {
	userID := c.GetInt64("user_id")
	serviceID, ok := parseServiceID(c)
	if !ok {
		return
	}

	msgs, err := h.service.List(c.Request.Context(), serviceID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	userID := c.GetInt64("user_id")
	serviceID, ok := parseServiceID(c)
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), serviceID, userID); err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	userID := c.GetInt64("user_id")
	serviceID, ok := parseServiceID(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCountForService(c.Request.Context(), serviceID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

func (h *Handler) TotalUnreadCount(c *gin.Context) {
	userID := c.GetInt64("user_id")

	count, err := h.service.TotalUnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread_count": count})
}

// DeleteMessage always answers 403: message history is permanent.
func (h *Handler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("messageId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	err = h.service.Delete(c.Request.Context(), messageID)
	h.writeError(c, err)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyContent):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrMessagesImmutable):
		response.Error(c, http.StatusForbidden, "MESSAGES_IMMUTABLE", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func parseServiceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid service ID")
		return 0, false
	}
	return id, true
}
