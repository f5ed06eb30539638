package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"flint/internal/domain/user"
	"flint/internal/infrastructure/crypto"
)

// UserRepository implements the user.Repository interface for PostgreSQL.
// SnapTrade user secrets are encrypted at rest.
type UserRepository struct {
	db  *DB
	enc *crypto.Encryptor
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *DB, enc *crypto.Encryptor) *UserRepository {
	return &UserRepository{db: db, enc: enc}
}

const userColumns = `
	id, email, password_hash, subscription_tier, is_admin,
	snaptrade_user_id, snaptrade_secret, created_at, updated_at
`

// Create inserts a new user with the free tier
func (r *UserRepository) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	query := `
		INSERT INTO users (email, password_hash, subscription_tier)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email, passwordHash, user.TierFree))
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// List retrieves all users, newest first
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// SetSnapTradeCredentials stores the brokerage registration for a user
func (r *UserRepository) SetSnapTradeCredentials(ctx context.Context, id int64, snapTradeUserID, secret string) error {
	encrypted, err := r.enc.Encrypt(secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt snaptrade secret: %w", err)
	}

	query := `
		UPDATE users
		SET snaptrade_user_id = $1, snaptrade_secret = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, snapTradeUserID, encrypted, id)
	if err != nil {
		return fmt.Errorf("failed to set snaptrade credentials: %w", err)
	}
	return requireRow(result, user.ErrUserNotFound)
}

// ClearSnapTradeCredentials removes the brokerage registration for a user
func (r *UserRepository) ClearSnapTradeCredentials(ctx context.Context, id int64) error {
	query := `
		UPDATE users
		SET snaptrade_user_id = NULL, snaptrade_secret = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear snaptrade credentials: %w", err)
	}
	return requireRow(result, user.ErrUserNotFound)
}

// SetSubscriptionTier updates a user's subscription tier
func (r *UserRepository) SetSubscriptionTier(ctx context.Context, id int64, tier string) error {
	query := `UPDATE users SET subscription_tier = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, tier, id)
	if err != nil {
		return fmt.Errorf("failed to set subscription tier: %w", err)
	}
	return requireRow(result, user.ErrUserNotFound)
}

func (r *UserRepository) scanUser(row scanner) (*user.User, error) {
	var u user.User
	var snapUserID, snapSecret sql.NullString

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.SubscriptionTier, &u.IsAdmin,
		&snapUserID, &snapSecret, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if snapUserID.Valid {
		u.SnapTradeUserID = snapUserID.String
	}
	if snapSecret.Valid {
		decrypted, err := r.enc.Decrypt(snapSecret.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt snaptrade secret: %w", err)
		}
		u.SnapTradeSecret = decrypted
	}

	return &u, nil
}

func requireRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
