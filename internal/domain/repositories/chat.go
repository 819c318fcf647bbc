package repositories

import (
	"context"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

type ChatRepository interface {
	CreateChatMessage(ctx context.Context, message *models.ChatMessage) error
	// GetChatHistory returns every message for a media item in
	// chronological order.
	GetChatHistory(ctx context.Context, mediaID string) ([]*models.ChatMessage, error)
	// GetInsights returns the seeded insights message for a media item,
	// or ErrNotFound when the thread has not been seeded yet.
	GetInsights(ctx context.Context, mediaID string) (*models.ChatMessage, error)
}
