package trade

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order lifecycle states. Orders start pending and settle to filled or
// failed once the brokerage reports a terminal status.
const (
	StatusPending = "pending"
	StatusFilled  = "filled"
	StatusFailed  = "failed"
)

// Order actions accepted by the API.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidAction  = errors.New("invalid order action")
	ErrInvalidUnits   = errors.New("units must be positive")
	ErrMissingSymbol  = errors.New("symbol is required")
	ErrMissingAccount = errors.New("brokerage account is required")
)

// Order is one brokerage order tracked by the dashboard.
type Order struct {
	ID               uuid.UUID        `json:"id"`
	UserID           int64            `json:"userId"`
	AccountID        string           `json:"accountId"`
	BrokerageOrderID string           `json:"brokerageOrderId"`
	Symbol           string           `json:"symbol"`
	Action           string           `json:"action"`
	Units            decimal.Decimal  `json:"units"`
	Status           string           `json:"status"`
	FillPrice        *decimal.Decimal `json:"fillPrice,omitempty"`
	FailureReason    string           `json:"failureReason,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// PlaceParams carries a new order request.
type PlaceParams struct {
	AccountID string          `json:"accountId"`
	Symbol    string          `json:"symbol"`
	Action    string          `json:"action"`
	Units     decimal.Decimal `json:"units"`
}

func (p PlaceParams) Validate() error {
	if p.AccountID == "" {
		return ErrMissingAccount
	}
	if p.Symbol == "" {
		return ErrMissingSymbol
	}
	if p.Action != ActionBuy && p.Action != ActionSell {
		return ErrInvalidAction
	}
	if !p.Units.IsPositive() {
		return ErrInvalidUnits
	}
	return nil
}
