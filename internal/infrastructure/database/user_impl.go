package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/models"
	"github.com/ayaankhan28/meeting-analysis-backend/internal/domain/repositories"
)

type userRepository struct {
	db *PostgresDB
}

func NewUserRepository(db *PostgresDB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT id, email, full_name, avatar_url, phone_number,
			notification_active, created_at, last_login
		FROM users WHERE id = $1`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) SetWhatsAppContact(ctx context.Context, userID, phoneNumber string) error {
	query := `UPDATE users SET phone_number = $2, notification_active = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, phoneNumber)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

func (r *userRepository) DisableNotifications(ctx context.Context, userID string) error {
	query := `UPDATE users SET notification_active = FALSE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
