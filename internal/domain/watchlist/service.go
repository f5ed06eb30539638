package watchlist

import (
	"context"
	"log"

	"flint/internal/domain/marketdata"
)

// QuotedEntry is a watchlist row joined with its latest quote. Quote is
// nil when no provider had data for the symbol.
type QuotedEntry struct {
	Entry
	Quote *marketdata.Quote `json:"quote,omitempty"`
}

type Service struct {
	repo   Repository
	quotes *marketdata.Service
}

func NewService(repo Repository, quotes *marketdata.Service) *Service {
	return &Service{repo: repo, quotes: quotes}
}

func (s *Service) Add(ctx context.Context, userID int64, symbol string) (*Entry, error) {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	entry, err := s.repo.Add(ctx, userID, normalized)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) Remove(ctx context.Context, userID int64, symbol string) error {
	normalized, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, userID, normalized)
}

// List returns the user's watchlist with quotes attached. Quote lookups
// are best effort: a symbol with no data still appears, without a quote.
func (s *Service) List(ctx context.Context, userID int64) ([]QuotedEntry, error) {
	entries, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	quoted := make([]QuotedEntry, 0, len(entries))
	for _, e := range entries {
		q := s.quotes.GetQuote(ctx, e.Symbol)
		if q == nil {
			log.Printf("watchlist: no quote for %s (user %d)", e.Symbol, userID)
		}
		quoted = append(quoted, QuotedEntry{Entry: e, Quote: q})
	}
	return quoted, nil
}
