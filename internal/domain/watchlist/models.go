package watchlist

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrDuplicateSymbol = errors.New("symbol already on watchlist")
	ErrEntryNotFound   = errors.New("watchlist entry not found")
	ErrInvalidSymbol   = errors.New("invalid symbol")
)

// Entry is one watched symbol for one user. The (user, symbol) pair is
// unique.
type Entry struct {
	UserID  int64     `json:"userId"`
	Symbol  string    `json:"symbol"`
	AddedAt time.Time `json:"addedAt"`
}

// NormalizeSymbol upper-cases and trims a ticker, rejecting junk input.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > 12 {
		return "", ErrInvalidSymbol
	}
	for _, r := range symbol {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '-' {
			return "", ErrInvalidSymbol
		}
	}
	return symbol, nil
}
