package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/infrastructure/notify"
)

type NotificationHandler struct {
	users  repositories.UserRepository
	sender *notify.TwilioClient
}

func NewNotificationHandler(users repositories.UserRepository, sender *notify.TwilioClient) *NotificationHandler {
	return &NotificationHandler{users: users, sender: sender}
}

type connectWhatsAppRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

func (h *NotificationHandler) ConnectWhatsApp(c *gin.Context) {
	var req connectWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if err := h.users.SetWhatsAppContact(c.Request.Context(), userID, req.PhoneNumber); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	welcome := "Welcome to MeetingIQ Pro! 🎉\nYou'll receive notifications here when your meeting analysis is complete."
	if err := h.sender.Send(c.Request.Context(), welcome, req.PhoneNumber); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "WhatsApp connection established"})
}

func (h *NotificationHandler) DisconnectWhatsApp(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.users.DisableNotifications(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "WhatsApp notifications disabled"})
}
