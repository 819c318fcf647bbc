package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
)

type mediaRepository struct {
	db *PostgresDB
}

func NewMediaRepository(db *PostgresDB) repositories.MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) CreateMedia(ctx context.Context, media *models.Media) error {
	if media.ID == "" {
		media.ID = uuid.New().String()
	}
	if media.UploadStatus == "" {
		media.UploadStatus = models.UploadStatusPending
	}

	query := `INSERT INTO media (id, user_id, type, upload_status, url, duration, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		media.ID,
		media.UserID,
		media.Type,
		media.UploadStatus,
		media.URL,
		media.Duration,
		media.Language,
	).Scan(&media.CreatedAt, &media.UpdatedAt)
}

func (r *mediaRepository) GetMediaByID(ctx context.Context, id string) (*models.Media, error) {
	query := `SELECT id, user_id, type, upload_status, url, title, description,
			thumbnail_url, duration, language, created_at, updated_at
		FROM media WHERE id = $1`

	media := &models.Media{}
	err := r.db.GetContext(ctx, media, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (r *mediaRepository) GetUserMedia(ctx context.Context, userID string) ([]*models.Media, error) {
	query := `SELECT id, user_id, type, upload_status, url, title, description,
			thumbnail_url, duration, language, created_at, updated_at
		FROM media
		WHERE user_id = $1
		ORDER BY created_at DESC`

	media := []*models.Media{}
	if err := r.db.SelectContext(ctx, &media, query, userID); err != nil {
		return nil, err
	}
	return media, nil
}

func (r *mediaRepository) UpdateMediaStatus(ctx context.Context, id string, status models.UploadStatus) error {
	query := `UPDATE media SET upload_status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *mediaRepository) UpdateMediaDetails(ctx context.Context, id string, title, description, thumbnailURL *string) error {
	query := `UPDATE media SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			thumbnail_url = COALESCE($4, thumbnail_url),
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, title, description, thumbnailURL)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *mediaRepository) UpdateMediaMetadata(ctx context.Context, id string, duration *int, language *string) error {
	query := `UPDATE media SET
			duration = COALESCE($2, duration),
			language = COALESCE($3, language),
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, duration, language)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
