package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"flint/internal/domain/account"
	"flint/internal/domain/portfolio"
	"flint/internal/domain/user"
	"flint/internal/domain/watchlist"
	"flint/internal/shared/middleware"
)

type DashboardHandler struct {
	accountService   *account.Service
	portfolioService *portfolio.Service
	watchlistService *watchlist.Service
	userService      *user.Service
}

func NewDashboardHandler(accountService *account.Service, portfolioService *portfolio.Service, watchlistService *watchlist.Service, userService *user.Service) *DashboardHandler {
	return &DashboardHandler{
		accountService:   accountService,
		portfolioService: portfolioService,
		watchlistService: watchlistService,
		userService:      userService,
	}
}

// DashboardResponse is everything the home screen renders in one call.
// Sections that depend on a provider the user has not connected are
// null rather than failing the whole response.
type DashboardResponse struct {
	Accounts  []AccountWithDisplay    `json:"accounts"`
	Portfolio *portfolio.Summary      `json:"portfolio"`
	Watchlist []watchlist.QuotedEntry `json:"watchlist"`
	Errors    []string                `json:"errors,omitempty"`
}

// HandleDashboard aggregates accounts, portfolio and watchlist
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	response := DashboardResponse{Accounts: []AccountWithDisplay{}}

	accounts, displays, err := h.accountService.ListDisplays(r.Context(), userID)
	if err != nil {
		log.Printf("Dashboard: listing accounts for user %d: %v", userID, err)
		response.Errors = append(response.Errors, "accounts unavailable")
	} else {
		for i, acc := range accounts {
			response.Accounts = append(response.Accounts, AccountWithDisplay{ConnectedAccount: acc, Display: displays[i]})
		}
	}

	creds, err := h.userService.Credentials(r.Context(), userID)
	switch {
	case err == nil:
		summary, err := h.portfolioService.Summarize(r.Context(), creds)
		if err != nil {
			log.Printf("Dashboard: summarizing portfolio for user %d: %v", userID, err)
			response.Errors = append(response.Errors, "portfolio unavailable")
		} else {
			response.Portfolio = summary
		}
	case errors.Is(err, user.ErrNotRegistered):
		// No brokerage connected; the section stays null.
	default:
		log.Printf("Dashboard: loading brokerage credentials for user %d: %v", userID, err)
		response.Errors = append(response.Errors, "portfolio unavailable")
	}

	entries, err := h.watchlistService.List(r.Context(), userID)
	if err != nil {
		log.Printf("Dashboard: listing watchlist for user %d: %v", userID, err)
		response.Errors = append(response.Errors, "watchlist unavailable")
	} else {
		response.Watchlist = entries
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
