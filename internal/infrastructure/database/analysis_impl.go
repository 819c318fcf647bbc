package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
)

type analysisRepository struct {
	db *PostgresDB
}

func NewAnalysisRepository(db *PostgresDB) repositories.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) CreateAnalysis(ctx context.Context, analysis *models.Analysis) error {
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	if analysis.Status == "" {
		analysis.Status = models.AnalysisStatusProcessing
	}

	query := `INSERT INTO analyses (id, media_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		analysis.ID,
		analysis.MediaID,
		analysis.Status,
	).Scan(&analysis.CreatedAt, &analysis.UpdatedAt)
}

func (r *analysisRepository) GetAnalysisByID(ctx context.Context, id string) (*models.Analysis, error) {
	query := `SELECT id, media_id, status, transcription, meta, created_at, updated_at
		FROM analyses WHERE id = $1`

	return r.scanAnalysis(r.db.QueryRowContext(ctx, query, id))
}

func (r *analysisRepository) GetLatestAnalysisByMediaID(ctx context.Context, mediaID string) (*models.Analysis, error) {
	query := `SELECT id, media_id, status, transcription, meta, created_at, updated_at
		FROM analyses WHERE media_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanAnalysis(r.db.QueryRowContext(ctx, query, mediaID))
}

func (r *analysisRepository) GetProcessingAnalysis(ctx context.Context, mediaID string) (*models.Analysis, error) {
	query := `SELECT id, media_id, status, transcription, meta, created_at, updated_at
		FROM analyses WHERE media_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanAnalysis(r.db.QueryRowContext(ctx, query, mediaID, models.AnalysisStatusProcessing))
}

func (r *analysisRepository) GetActiveAnalysis(ctx context.Context, mediaID string) (*models.Analysis, error) {
	query := `SELECT id, media_id, status, transcription, meta, created_at, updated_at
		FROM analyses WHERE media_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1`

	return r.scanAnalysis(r.db.QueryRowContext(ctx, query, mediaID,
		models.AnalysisStatusProcessing, models.AnalysisStatusDone))
}

func (r *analysisRepository) CompleteAnalysis(ctx context.Context, id string, transcription string, meta json.RawMessage) error {
	query := `UPDATE analyses
		SET status = $2, transcription = $3, meta = $4, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, models.AnalysisStatusDone, transcription, []byte(meta))
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *analysisRepository) FailAnalysis(ctx context.Context, id string, errMessage string) error {
	meta, _ := json.Marshal(models.AnalysisError{Error: errMessage})

	query := `UPDATE analyses
		SET status = $2, meta = $3, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, models.AnalysisStatusFailed, meta)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *analysisRepository) scanAnalysis(row *sql.Row) (*models.Analysis, error) {
	analysis := &models.Analysis{}
	var meta []byte

	err := row.Scan(
		&analysis.ID,
		&analysis.MediaID,
		&analysis.Status,
		&analysis.Transcription,
		&meta,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(meta) > 0 {
		analysis.Meta = json.RawMessage(meta)
	}
	return analysis, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}
