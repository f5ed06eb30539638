package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"flint/internal/domain/account"
	"flint/internal/domain/marketdata"
	"flint/internal/domain/user"
	"flint/internal/infrastructure/snaptrade"
	"flint/internal/shared/middleware"
)

type MarketDataHandler struct {
	marketData     *marketdata.Service
	userService    *user.Service
	accountService *account.Service
}

func NewMarketDataHandler(marketData *marketdata.Service, userService *user.Service, accountService *account.Service) *MarketDataHandler {
	return &MarketDataHandler{marketData: marketData, userService: userService, accountService: accountService}
}

type BulkQuoteRequest struct {
	Symbols []string `json:"symbols"`
}

// HandleQuote returns the latest quote for one symbol, or null when no
// provider had data
func (h *MarketDataHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	quote := h.marketData.GetQuote(h.withBrokerCredentials(r), symbol)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}

// HandleBulkQuotes returns quotes for many symbols at once, omitting
// the ones no provider had data for
func (h *MarketDataHandler) HandleBulkQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BulkQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Symbols) == 0 {
		http.Error(w, "At least one symbol is required", http.StatusBadRequest)
		return
	}
	if len(req.Symbols) > 100 {
		http.Error(w, "Too many symbols (max 100)", http.StatusBadRequest)
		return
	}

	quotes := h.marketData.GetQuotes(h.withBrokerCredentials(r), req.Symbols)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quotes)
}

// HandleCandles returns daily candles for a symbol
func (h *MarketDataHandler) HandleCandles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Error(w, "Symbol is required", http.StatusBadRequest)
		return
	}

	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed < 1 || parsed > 365 {
			http.Error(w, "Invalid days parameter", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	candles := h.marketData.Candles(r.Context(), symbol, days)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(candles)
}

// withBrokerCredentials attaches the user's brokerage credentials to the
// context when they have them, so the authenticated provider can serve
// the quote. Anonymous or unregistered users just skip that provider.
func (h *MarketDataHandler) withBrokerCredentials(r *http.Request) context.Context {
	ctx := r.Context()

	userID, ok := middleware.UserID(ctx)
	if !ok {
		return ctx
	}
	creds, err := h.userService.Credentials(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrNotRegistered) {
			log.Printf("Error loading brokerage credentials for user %d: %v", userID, err)
		}
		return ctx
	}

	// Broker quotes need an account to quote through; use the first
	// connected brokerage account.
	accounts, err := h.accountService.ListAccounts(ctx, userID)
	if err != nil {
		log.Printf("Error listing accounts for user %d: %v", userID, err)
		return ctx
	}
	for _, acc := range accounts {
		if acc.Provider == account.ProviderSnapTrade {
			return snaptrade.WithCredentials(ctx, creds, acc.ExternalID)
		}
	}
	return ctx
}
