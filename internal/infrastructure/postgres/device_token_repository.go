package postgres

import (
	"context"
	"fmt"

	"flint/internal/domain/notification"
)

// DeviceTokenRepository implements the notification.Repository interface
// for PostgreSQL
type DeviceTokenRepository struct {
	db *DB
}

// NewDeviceTokenRepository creates a new PostgreSQL device token repository
func NewDeviceTokenRepository(db *DB) *DeviceTokenRepository {
	return &DeviceTokenRepository{db: db}
}

// Register upserts a device token, reactivating it if it was previously
// deactivated or re-registered by another user
func (r *DeviceTokenRepository) Register(ctx context.Context, userID int64, token, platform string) (*notification.DeviceToken, error) {
	query := `
		INSERT INTO device_tokens (user_id, token, platform, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (token)
		DO UPDATE SET
			user_id = EXCLUDED.user_id,
			platform = EXCLUDED.platform,
			active = TRUE,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, token, platform, active, created_at, updated_at
	`

	var dt notification.DeviceToken
	err := r.db.QueryRowContext(ctx, query, userID, token, platform).Scan(
		&dt.ID, &dt.UserID, &dt.Token, &dt.Platform, &dt.Active,
		&dt.CreatedAt, &dt.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register device token: %w", err)
	}
	return &dt, nil
}

// Deactivate marks a token as inactive so pushes stop going to it
func (r *DeviceTokenRepository) Deactivate(ctx context.Context, token string) error {
	query := `UPDATE device_tokens SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE token = $1`

	result, err := r.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to deactivate device token: %w", err)
	}
	return requireRow(result, notification.ErrTokenNotFound)
}

// ListActiveByUserID retrieves all active tokens for a user
func (r *DeviceTokenRepository) ListActiveByUserID(ctx context.Context, userID int64) ([]notification.DeviceToken, error) {
	query := `
		SELECT id, user_id, token, platform, active, created_at, updated_at
		FROM device_tokens
		WHERE user_id = $1 AND active = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var dt notification.DeviceToken
		err := rows.Scan(&dt.ID, &dt.UserID, &dt.Token, &dt.Platform, &dt.Active,
			&dt.CreatedAt, &dt.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device token: %w", err)
		}
		tokens = append(tokens, dt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating device tokens: %w", err)
	}

	return tokens, nil
}
