package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/services"
)

type ChatHandler struct {
	service services.ChatService
}

func NewChatHandler(service services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SendMessage runs one conversation turn against the media's analysis.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	mediaID := c.Param("media_id")

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.SendMessage(c.Request.Context(), mediaID, req.Message)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "response": resp.Response})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	mediaID := c.Param("media_id")

	history, err := h.service.GetHistory(c.Request.Context(), mediaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": history})
}
