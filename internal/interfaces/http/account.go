package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"flint/internal/domain/account"
	"flint/internal/shared/middleware"
)

type AccountHandler struct {
	accountService *account.Service
}

func NewAccountHandler(accountService *account.Service) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountWithDisplay pairs an account with its normalized display
// balance for list responses.
type AccountWithDisplay struct {
	*account.ConnectedAccount
	Display account.DisplayBalance `json:"display"`
}

// HandleListAccounts returns all connected accounts for the
// authenticated user with normalized display balances
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accounts, displays, err := h.accountService.ListDisplays(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing accounts for user %d: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	response := make([]AccountWithDisplay, 0, len(accounts))
	for i, acc := range accounts {
		response = append(response, AccountWithDisplay{ConnectedAccount: acc, Display: displays[i]})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleAccountByID handles operations on a specific account (GET and DELETE)
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accountID := r.PathValue("id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetAccount(w, r, userID, accountID)
	case http.MethodDelete:
		h.handleDisconnectAccount(w, r, userID, accountID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AccountHandler) handleGetAccount(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	acc, err := h.accountService.GetAccount(r.Context(), accountID, userID)
	if err != nil {
		writeAccountError(w, userID, accountID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AccountWithDisplay{ConnectedAccount: acc, Display: account.Display(acc)})
}

func (h *AccountHandler) handleDisconnectAccount(w http.ResponseWriter, r *http.Request, userID int64, accountID string) {
	if err := h.accountService.DisconnectAccount(r.Context(), accountID, userID); err != nil {
		writeAccountError(w, userID, accountID, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeAccountError(w http.ResponseWriter, userID int64, accountID string, err error) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound):
		http.Error(w, "Account not found", http.StatusNotFound)
	case errors.Is(err, account.ErrForbidden):
		// Hide other users' accounts rather than confirming they exist.
		http.Error(w, "Account not found", http.StatusNotFound)
	default:
		log.Printf("Error on account %s for user %d: %v", accountID, userID, err)
		http.Error(w, "Failed to load account", http.StatusInternalServerError)
	}
}
