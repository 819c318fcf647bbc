package repositories

import (
	"context"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// SetWhatsAppContact stores a phone number and turns notifications on.
	SetWhatsAppContact(ctx context.Context, userID, phoneNumber string) error
	DisableNotifications(ctx context.Context, userID string) error
}
