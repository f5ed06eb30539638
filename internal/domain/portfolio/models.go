package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoBrokerage = errors.New("no brokerage connection")

// Holding is one position aggregated across the user's brokerage
// accounts.
type Holding struct {
	Symbol       string          `json:"symbol"`
	Description  string          `json:"description"`
	Units        decimal.Decimal `json:"units"`
	Price        decimal.Decimal `json:"price"`
	MarketValue  decimal.Decimal `json:"marketValue"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	UnrealizedPL decimal.Decimal `json:"unrealizedPnl"`
	// UnrealizedPLPct is zero when there is no cost basis to compare
	// against.
	UnrealizedPLPct decimal.Decimal `json:"unrealizedPnlPct"`
	Weight          decimal.Decimal `json:"weight"`
}

// Summary is the portfolio rollup shown on the dashboard. DayChangePct
// is the value-weighted average of each holding's daily change.
type Summary struct {
	TotalValue   decimal.Decimal `json:"totalValue"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	UnrealizedPL decimal.Decimal `json:"unrealizedPnl"`
	DayChangePct decimal.Decimal `json:"dayChangePct"`
	Holdings     []Holding       `json:"holdings"`
	AsOf         time.Time       `json:"asOf"`
}

// HistoryPoint is one day of portfolio value, reconstructed from daily
// closes weighted by current units.
type HistoryPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}
