package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type AnalysisRepository interface {
	CreateAnalysis(ctx context.Context, analysis *models.Analysis) error
	GetAnalysisByID(ctx context.Context, id string) (*models.Analysis, error)
	// GetLatestAnalysisByMediaID returns the newest analysis for a media
	// item, whatever its status.
	GetLatestAnalysisByMediaID(ctx context.Context, mediaID string) (*models.Analysis, error)
	// GetProcessingAnalysis returns the analysis currently in the
	// processing state for a media item, or ErrNotFound.
	GetProcessingAnalysis(ctx context.Context, mediaID string) (*models.Analysis, error)
	// GetActiveAnalysis returns a processing or done analysis for a media
	// item, used for duplicate-trigger suppression.
	GetActiveAnalysis(ctx context.Context, mediaID string) (*models.Analysis, error)
	CompleteAnalysis(ctx context.Context, id string, transcription string, meta json.RawMessage) error
	FailAnalysis(ctx context.Context, id string, errMessage string) error
}
