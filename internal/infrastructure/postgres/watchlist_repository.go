package postgres

import (
	"context"
	"fmt"
	"strings"

	"flint/internal/domain/watchlist"
)

// WatchlistRepository implements the watchlist.Repository interface for
// PostgreSQL
type WatchlistRepository struct {
	db *DB
}

// NewWatchlistRepository creates a new PostgreSQL watchlist repository
func NewWatchlistRepository(db *DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts a watchlist entry, reporting duplicates as a domain error
func (r *WatchlistRepository) Add(ctx context.Context, userID int64, symbol string) (*watchlist.Entry, error) {
	query := `
		INSERT INTO watchlist_entries (user_id, symbol)
		VALUES ($1, $2)
		RETURNING user_id, symbol, added_at
	`

	var entry watchlist.Entry
	err := r.db.QueryRowContext(ctx, query, userID, symbol).Scan(
		&entry.UserID, &entry.Symbol, &entry.AddedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "watchlist_entries_pkey") {
			return nil, watchlist.ErrDuplicateSymbol
		}
		return nil, fmt.Errorf("failed to add watchlist entry: %w", err)
	}
	return &entry, nil
}

// Remove deletes a watchlist entry
func (r *WatchlistRepository) Remove(ctx context.Context, userID int64, symbol string) error {
	query := `DELETE FROM watchlist_entries WHERE user_id = $1 AND symbol = $2`

	result, err := r.db.ExecContext(ctx, query, userID, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist entry: %w", err)
	}
	return requireRow(result, watchlist.ErrEntryNotFound)
}

// ListByUserID retrieves a user's watchlist in insertion order
func (r *WatchlistRepository) ListByUserID(ctx context.Context, userID int64) ([]watchlist.Entry, error) {
	query := `
		SELECT user_id, symbol, added_at
		FROM watchlist_entries
		WHERE user_id = $1
		ORDER BY added_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var entries []watchlist.Entry
	for rows.Next() {
		var entry watchlist.Entry
		if err := rows.Scan(&entry.UserID, &entry.Symbol, &entry.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist: %w", err)
	}

	return entries, nil
}
