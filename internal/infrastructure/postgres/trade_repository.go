package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flint/internal/domain/trade"
)

// TradeRepository implements the trade.Repository interface for PostgreSQL
type TradeRepository struct {
	db *DB
}

// NewTradeRepository creates a new PostgreSQL trade repository
func NewTradeRepository(db *DB) *TradeRepository {
	return &TradeRepository{db: db}
}

const tradeColumns = `
	id, user_id, account_id, brokerage_order_id, symbol, action, units,
	status, fill_price, failure_reason, created_at, updated_at
`

// Create inserts a new order record
func (r *TradeRepository) Create(ctx context.Context, order *trade.Order) error {
	query := `
		INSERT INTO trades (
			id, user_id, account_id, brokerage_order_id, symbol, action, units, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		order.ID, order.UserID, order.AccountID, order.BrokerageOrderID,
		order.Symbol, order.Action, order.Units.String(), order.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID
func (r *TradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	order, err := r.scanTrade(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, trade.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	return order, nil
}

// ListByUserID retrieves all orders for a user, newest first
func (r *TradeRepository) ListByUserID(ctx context.Context, userID int64) ([]trade.Order, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListPending retrieves all orders still waiting on the brokerage
func (r *TradeRepository) ListPending(ctx context.Context) ([]trade.Order, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE status = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, trade.StatusPending)
}

// UpdateStatus settles or re-marks an order
func (r *TradeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, fillPrice *decimal.Decimal, failureReason string) error {
	query := `
		UPDATE trades
		SET status = $1, fill_price = $2, failure_reason = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, status, nullDecimal(fillPrice), nullString(failureReason), id)
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	return requireRow(result, trade.ErrOrderNotFound)
}

func (r *TradeRepository) list(ctx context.Context, query string, arg any) ([]trade.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	defer rows.Close()

	var orders []trade.Order
	for rows.Next() {
		order, err := r.scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		orders = append(orders, *order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trades: %w", err)
	}

	return orders, nil
}

func (r *TradeRepository) scanTrade(row scanner) (*trade.Order, error) {
	var order trade.Order
	var units string
	var fillPrice, failureReason sql.NullString

	err := row.Scan(
		&order.ID, &order.UserID, &order.AccountID, &order.BrokerageOrderID,
		&order.Symbol, &order.Action, &units, &order.Status,
		&fillPrice, &failureReason, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if order.Units, err = decimal.NewFromString(units); err != nil {
		return nil, fmt.Errorf("failed to parse units %q: %w", units, err)
	}
	if order.FillPrice, err = parseDecimal(fillPrice); err != nil {
		return nil, err
	}
	if failureReason.Valid {
		order.FailureReason = failureReason.String
	}

	return &order, nil
}
