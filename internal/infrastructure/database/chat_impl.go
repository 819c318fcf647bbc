package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
)

type chatRepository struct {
	db *PostgresDB
}

func NewChatRepository(db *PostgresDB) repositories.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateChatMessage(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	query := `INSERT INTO chats (id, media_id, user_type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		message.ID,
		message.MediaID,
		message.UserType,
		message.Message,
	).Scan(&message.CreatedAt)
}

func (r *chatRepository) GetChatHistory(ctx context.Context, mediaID string) ([]*models.ChatMessage, error) {
	query := `SELECT id, media_id, user_type, message, created_at
		FROM chats
		WHERE media_id = $1
		ORDER BY created_at`

	messages := []*models.ChatMessage{}
	if err := r.db.SelectContext(ctx, &messages, query, mediaID); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatRepository) GetInsights(ctx context.Context, mediaID string) (*models.ChatMessage, error) {
	query := `SELECT id, media_id, user_type, message, created_at
		FROM chats
		WHERE media_id = $1 AND user_type = $2
		LIMIT 1`

	message := &models.ChatMessage{}
	err := r.db.GetContext(ctx, message, query, mediaID, models.ChatRoleInsights)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return message, nil
}
