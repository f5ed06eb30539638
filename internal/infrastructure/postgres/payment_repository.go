package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flint/internal/domain/payment"
)

// PaymentRepository implements the payment.Repository interface for PostgreSQL
type PaymentRepository struct {
	db *DB
}

// NewPaymentRepository creates a new PostgreSQL payment repository
func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, user_id, funding_account_id, credit_account_id, provider_payment_id,
	amount, memo, status, failure_reason, created_at, updated_at
`

// Create inserts a new payment record
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, funding_account_id, credit_account_id, amount, memo, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		p.ID, p.UserID, p.FundingAccountID, p.CreditAccountID,
		p.Amount.String(), nullString(p.Memo), p.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	p, err := r.scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, payment.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return p, nil
}

// ListByUserID retrieves all payments for a user, newest first
func (r *PaymentRepository) ListByUserID(ctx context.Context, userID int64) ([]payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// UpdateStatus records a lifecycle transition
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, providerPaymentID, failureReason string) error {
	query := `
		UPDATE payments
		SET status = $1, provider_payment_id = $2, failure_reason = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, nullString(providerPaymentID), nullString(failureReason), id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return requireRow(result, payment.ErrPaymentNotFound)
}

func (r *PaymentRepository) scanPayment(row scanner) (*payment.Payment, error) {
	var p payment.Payment
	var amount string
	var providerPaymentID, memo, failureReason sql.NullString

	err := row.Scan(
		&p.ID, &p.UserID, &p.FundingAccountID, &p.CreditAccountID,
		&providerPaymentID, &amount, &memo, &p.Status, &failureReason,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amount, err)
	}
	if providerPaymentID.Valid {
		p.ProviderPaymentID = providerPaymentID.String
	}
	if memo.Valid {
		p.Memo = memo.String
	}
	if failureReason.Valid {
		p.FailureReason = failureReason.String
	}

	return &p, nil
}
