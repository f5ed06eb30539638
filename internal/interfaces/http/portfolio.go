package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"flint/internal/domain/portfolio"
	"flint/internal/domain/user"
	"flint/internal/shared/middleware"
)

type PortfolioHandler struct {
	portfolioService *portfolio.Service
	userService      *user.Service
}

func NewPortfolioHandler(portfolioService *portfolio.Service, userService *user.Service) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, userService: userService}
}

// HandleSummary returns the aggregated portfolio for the authenticated user
func (h *PortfolioHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	creds, err := h.userService.Credentials(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotRegistered) {
			http.Error(w, "No brokerage connected", http.StatusPreconditionFailed)
			return
		}
		log.Printf("Error loading brokerage credentials for user %d: %v", userID, err)
		http.Error(w, "Failed to load portfolio", http.StatusInternalServerError)
		return
	}

	summary, err := h.portfolioService.Summarize(r.Context(), creds)
	if err != nil {
		log.Printf("Error summarizing portfolio for user %d: %v", userID, err)
		http.Error(w, "Failed to load portfolio", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// HandleHistory returns the reconstructed portfolio value series
func (h *PortfolioHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
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

	creds, err := h.userService.Credentials(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotRegistered) {
			http.Error(w, "No brokerage connected", http.StatusPreconditionFailed)
			return
		}
		log.Printf("Error loading brokerage credentials for user %d: %v", userID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	history, err := h.portfolioService.History(r.Context(), creds, days)
	if err != nil {
		log.Printf("Error building portfolio history for user %d: %v", userID, err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(history)
}
