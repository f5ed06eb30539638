package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"flint/internal/domain/account"
	"flint/internal/infrastructure/crypto"
)

// AccountRepository implements the account.Repository interface for
// PostgreSQL. Provider access tokens are encrypted at rest.
type AccountRepository struct {
	db  *DB
	enc *crypto.Encryptor
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB, enc *crypto.Encryptor) *AccountRepository {
	return &AccountRepository{db: db, enc: enc}
}

const accountColumns = `
	id, user_id, provider, external_id, name, institution, account_type,
	currency, access_token, current_balance, available_balance,
	ledger_balance, credit_limit, last_synced_at, removed, created_at, updated_at
`

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.ConnectedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM connected_accounts WHERE id = $1`

	acc, err := r.scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ListByUserID retrieves all non-removed accounts for a user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.ConnectedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM connected_accounts
		WHERE user_id = $1 AND removed = FALSE
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.ConnectedAccount
	for rows.Next() {
		acc, err := r.scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Upsert creates or refreshes an account from a provider sync
func (r *AccountRepository) Upsert(ctx context.Context, params account.UpsertParams) (*account.ConnectedAccount, error) {
	query := `
		INSERT INTO connected_accounts (
			id, user_id, provider, external_id, name, institution, account_type,
			currency, access_token, current_balance, available_balance,
			ledger_balance, credit_limit, last_synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, CURRENT_TIMESTAMP)
		ON CONFLICT (id)
		DO UPDATE SET
			name = EXCLUDED.name,
			institution = EXCLUDED.institution,
			account_type = EXCLUDED.account_type,
			currency = EXCLUDED.currency,
			access_token = EXCLUDED.access_token,
			current_balance = EXCLUDED.current_balance,
			available_balance = EXCLUDED.available_balance,
			ledger_balance = EXCLUDED.ledger_balance,
			credit_limit = EXCLUDED.credit_limit,
			last_synced_at = CURRENT_TIMESTAMP,
			removed = FALSE,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + accountColumns

	token, err := r.enc.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	acc, err := r.scanAccount(r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.Provider, params.ExternalID,
		params.Name, nullString(params.Institution), params.AccountType,
		nullString(params.Currency), nullString(token),
		nullDecimal(params.Current), nullDecimal(params.Available),
		nullDecimal(params.Ledger), nullDecimal(params.CreditLimit),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}
	return acc, nil
}

// SoftDelete marks an account as removed on disconnect
func (r *AccountRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE connected_accounts
		SET removed = TRUE, access_token = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return account.ErrAccountNotFound
	}

	return nil
}

// Exists checks if an account with the given ID exists
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM connected_accounts WHERE id = $1)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return exists, nil
}

// scanner covers both *sql.Rows and the traced row wrapper.
type scanner interface {
	Scan(dest ...any) error
}

func (r *AccountRepository) scanAccount(row scanner) (*account.ConnectedAccount, error) {
	var acc account.ConnectedAccount
	var institution, currency, token sql.NullString
	var current, available, ledger, creditLimit sql.NullString
	var lastSyncedAt sql.NullTime

	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.Provider, &acc.ExternalID, &acc.Name,
		&institution, &acc.AccountType, &currency, &token,
		&current, &available, &ledger, &creditLimit,
		&lastSyncedAt, &acc.Removed, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if institution.Valid {
		acc.Institution = institution.String
	}
	if currency.Valid {
		acc.Currency = currency.String
	}
	if token.Valid {
		decrypted, err := r.enc.Decrypt(token.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
		acc.AccessToken = decrypted
	}
	if lastSyncedAt.Valid {
		acc.LastSyncedAt = lastSyncedAt.Time
	}

	if acc.Current, err = parseDecimal(current); err != nil {
		return nil, err
	}
	if acc.Available, err = parseDecimal(available); err != nil {
		return nil, err
	}
	if acc.Ledger, err = parseDecimal(ledger); err != nil {
		return nil, err
	}
	if acc.CreditLimit, err = parseDecimal(creditLimit); err != nil {
		return nil, err
	}

	return &acc, nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", s.String, err)
	}
	return &d, nil
}
