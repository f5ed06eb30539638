package watchlist

import "context"

// Repository persists watchlist entries. Add must return
// ErrDuplicateSymbol when the (user, symbol) pair already exists.
type Repository interface {
	Add(ctx context.Context, userID int64, symbol string) (*Entry, error)
	Remove(ctx context.Context, userID int64, symbol string) error
	ListByUserID(ctx context.Context, userID int64) ([]Entry, error)
}
