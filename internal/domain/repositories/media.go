package repositories

import (
	"context"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

type MediaRepository interface {
	CreateMedia(ctx context.Context, media *models.Media) error
	GetMediaByID(ctx context.Context, id string) (*models.Media, error)
	GetUserMedia(ctx context.Context, userID string) ([]*models.Media, error)
	UpdateMediaStatus(ctx context.Context, id string, status models.UploadStatus) error
	// UpdateMediaDetails backfills the display fields the pipeline is
	// allowed to write. Nil arguments leave the column untouched.
	UpdateMediaDetails(ctx context.Context, id string, title, description, thumbnailURL *string) error
	// UpdateMediaMetadata backfills the playback fields reported by the
	// upload client. Nil arguments leave the column untouched.
	UpdateMediaMetadata(ctx context.Context, id string, duration *int, language *string) error
}
