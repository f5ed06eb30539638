package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flint/internal/domain/marketdata"
	"flint/internal/domain/watchlist"
	"flint/internal/shared/middleware"
)

type MockWatchlistRepo struct {
	AddFunc          func(ctx context.Context, userID int64, symbol string) (*watchlist.Entry, error)
	RemoveFunc       func(ctx context.Context, userID int64, symbol string) error
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]watchlist.Entry, error)
}

func (m *MockWatchlistRepo) Add(ctx context.Context, userID int64, symbol string) (*watchlist.Entry, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userID, symbol)
	}
	return &watchlist.Entry{UserID: userID, Symbol: symbol}, nil
}

func (m *MockWatchlistRepo) Remove(ctx context.Context, userID int64, symbol string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, symbol)
	}
	return nil
}

func (m *MockWatchlistRepo) ListByUserID(ctx context.Context, userID int64) ([]watchlist.Entry, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func newWatchlistHandler(repo *MockWatchlistRepo) *WatchlistHandler {
	quotes := marketdata.NewService(time.Second, nil)
	return NewWatchlistHandler(watchlist.NewService(repo, quotes))
}

func TestHandleWatchlist_List(t *testing.T) {
	repo := &MockWatchlistRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64) ([]watchlist.Entry, error) {
			return []watchlist.Entry{{UserID: userID, Symbol: "TSLA"}}, nil
		},
	}
	handler := newWatchlistHandler(repo)

	req := authedRequest(http.MethodGet, "/api/watchlist", 1)
	rr := httptest.NewRecorder()
	handler.HandleWatchlist(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "TSLA") {
		t.Errorf("response missing symbol: %s", rr.Body.String())
	}
}

func TestHandleWatchlist_Add(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		addErr         error
		expectedStatus int
	}{
		{
			name:           "Created",
			body:           `{"symbol":"aapl"}`,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid Symbol",
			body:           `{"symbol":"not a symbol!"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Duplicate",
			body:           `{"symbol":"AAPL"}`,
			addErr:         watchlist.ErrDuplicateSymbol,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Invalid Body",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockWatchlistRepo{
				AddFunc: func(ctx context.Context, userID int64, symbol string) (*watchlist.Entry, error) {
					if tt.addErr != nil {
						return nil, tt.addErr
					}
					return &watchlist.Entry{UserID: userID, Symbol: symbol}, nil
				},
			}
			handler := newWatchlistHandler(repo)

			req := httptest.NewRequest(http.MethodPost, "/api/watchlist", strings.NewReader(tt.body))
			ctx := context.WithValue(req.Context(), middleware.UserIDKey, int64(1))
			req = req.WithContext(ctx)

			rr := httptest.NewRecorder()
			handler.HandleWatchlist(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestHandleWatchlistSymbol_Remove(t *testing.T) {
	tests := []struct {
		name           string
		symbol         string
		removeErr      error
		expectedStatus int
	}{
		{
			name:           "Removed",
			symbol:         "AAPL",
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "Not Found",
			symbol:         "MSFT",
			removeErr:      watchlist.ErrEntryNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockWatchlistRepo{
				RemoveFunc: func(ctx context.Context, userID int64, symbol string) error {
					return tt.removeErr
				},
			}
			handler := newWatchlistHandler(repo)

			req := authedRequest(http.MethodDelete, "/api/watchlist/"+tt.symbol, 1)
			req.SetPathValue("symbol", tt.symbol)
			rr := httptest.NewRecorder()
			handler.HandleWatchlistSymbol(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}
