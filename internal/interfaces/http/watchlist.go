package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"flint/internal/domain/watchlist"
	"flint/internal/shared/middleware"
)

type WatchlistHandler struct {
	watchlistService *watchlist.Service
}

func NewWatchlistHandler(watchlistService *watchlist.Service) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService}
}

type AddWatchlistRequest struct {
	Symbol string `json:"symbol"`
}

// HandleWatchlist lists the watchlist with quotes (GET) or adds a
// symbol (POST)
func (h *WatchlistHandler) HandleWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r, userID)
	case http.MethodPost:
		h.handleAdd(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WatchlistHandler) handleList(w http.ResponseWriter, r *http.Request, userID int64) {
	entries, err := h.watchlistService.List(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing watchlist for user %d: %v", userID, err)
		http.Error(w, "Failed to list watchlist", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func (h *WatchlistHandler) handleAdd(w http.ResponseWriter, r *http.Request, userID int64) {
	var req AddWatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.watchlistService.Add(r.Context(), userID, req.Symbol)
	if err != nil {
		switch {
		case errors.Is(err, watchlist.ErrInvalidSymbol):
			http.Error(w, "Invalid symbol", http.StatusBadRequest)
		case errors.Is(err, watchlist.ErrDuplicateSymbol):
			http.Error(w, "Symbol already on watchlist", http.StatusConflict)
		default:
			log.Printf("Error adding %q to watchlist for user %d: %v", req.Symbol, userID, err)
			http.Error(w, "Failed to add to watchlist", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

// HandleWatchlistSymbol removes a symbol from the watchlist
func (h *WatchlistHandler) HandleWatchlistSymbol(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	symbol := r.PathValue("symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	if err := h.watchlistService.Remove(r.Context(), userID, symbol); err != nil {
		switch {
		case errors.Is(err, watchlist.ErrInvalidSymbol):
			http.Error(w, "Invalid symbol", http.StatusBadRequest)
		case errors.Is(err, watchlist.ErrEntryNotFound):
			http.Error(w, "Symbol not on watchlist", http.StatusNotFound)
		default:
			log.Printf("Error removing %q from watchlist for user %d: %v", symbol, userID, err)
			http.Error(w, "Failed to remove from watchlist", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
