package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	accountsync "flint/internal/domain/sync"
	"flint/internal/domain/user"
	"flint/internal/infrastructure/snaptrade"
	"flint/internal/shared/middleware"
)

type SnapTradeHandler struct {
	userService     *user.Service
	syncService     *accountsync.Service
	snapTradeClient snaptrade.ClientInterface
}

func NewSnapTradeHandler(userService *user.Service, syncService *accountsync.Service, snapTradeClient snaptrade.ClientInterface) *SnapTradeHandler {
	return &SnapTradeHandler{
		userService:     userService,
		syncService:     syncService,
		snapTradeClient: snapTradeClient,
	}
}

type ConnectResponse struct {
	RedirectURI string `json:"redirectURI"`
}

// HandleRegister registers the user with the brokerage aggregator and
// returns a connection-portal URL for linking a brokerage
func (h *SnapTradeHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.userService.ConnectSnapTrade(r.Context(), userID); err != nil {
		log.Printf("Error registering user %d with brokerage: %v", userID, err)
		http.Error(w, "Failed to register with brokerage", http.StatusBadGateway)
		return
	}

	creds, err := h.userService.Credentials(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading brokerage credentials for user %d: %v", userID, err)
		http.Error(w, "Failed to register with brokerage", http.StatusInternalServerError)
		return
	}

	portalURL, err := h.snapTradeClient.LoginPortalURL(r.Context(), creds)
	if err != nil {
		log.Printf("Error building portal URL for user %d: %v", userID, err)
		http.Error(w, "Failed to build connection URL", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConnectResponse{RedirectURI: portalURL})
}

// HandleSync refreshes the user's brokerage accounts on demand
func (h *SnapTradeHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
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
		http.Error(w, "Failed to sync", http.StatusInternalServerError)
		return
	}

	result, err := h.syncService.SyncSnapTrade(r.Context(), userID, creds)
	if err != nil {
		log.Printf("Error syncing brokerage accounts for user %d: %v", userID, err)
		http.Error(w, "Failed to sync brokerage accounts", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleAccounts lists the user's raw brokerage accounts
func (h *SnapTradeHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Failed to list brokerage accounts", http.StatusInternalServerError)
		return
	}

	accounts, err := h.snapTradeClient.ListAccounts(r.Context(), creds)
	if err != nil {
		log.Printf("Error listing brokerage accounts for user %d: %v", userID, err)
		http.Error(w, "Failed to list brokerage accounts", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

// HandleCreateFreshAccount wipes the brokerage registration and starts
// over, for users whose connection is wedged
func (h *SnapTradeHandler) HandleCreateFreshAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if _, err := h.userService.ResetSnapTrade(r.Context(), userID); err != nil {
		log.Printf("Error resetting brokerage registration for user %d: %v", userID, err)
		http.Error(w, "Failed to reset brokerage registration", http.StatusBadGateway)
		return
	}

	creds, err := h.userService.Credentials(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading brokerage credentials for user %d: %v", userID, err)
		http.Error(w, "Failed to reset brokerage registration", http.StatusInternalServerError)
		return
	}

	portalURL, err := h.snapTradeClient.LoginPortalURL(r.Context(), creds)
	if err != nil {
		log.Printf("Error building portal URL for user %d: %v", userID, err)
		http.Error(w, "Failed to build connection URL", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ConnectResponse{RedirectURI: portalURL})
}
