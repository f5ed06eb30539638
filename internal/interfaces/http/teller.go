package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"flint/internal/domain/account"
	"flint/internal/domain/payment"
	accountsync "flint/internal/domain/sync"
	"flint/internal/infrastructure/teller"
	"flint/internal/shared/middleware"
)

type TellerHandler struct {
	tellerClient   teller.ClientInterface
	syncService    *accountsync.Service
	paymentService *payment.Service
	accountService *account.Service
}

func NewTellerHandler(tellerClient teller.ClientInterface, syncService *accountsync.Service, paymentService *payment.Service, accountService *account.Service) *TellerHandler {
	return &TellerHandler{
		tellerClient:   tellerClient,
		syncService:    syncService,
		paymentService: paymentService,
		accountService: accountService,
	}
}

type ExchangeTokenRequest struct {
	AccessToken string `json:"accessToken"`
}

// HandleConnectInit returns the configuration the client needs to open
// Teller Connect
func (h *TellerHandler) HandleConnectInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if _, ok := middleware.UserID(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.tellerClient.ConnectInit())
}

// HandleExchangeToken validates an enrollment access token and runs the
// first sync so the new accounts appear immediately
func (h *TellerHandler) HandleExchangeToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ExchangeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		http.Error(w, "Access token is required", http.StatusBadRequest)
		return
	}

	if _, err := h.tellerClient.ExchangeToken(r.Context(), req.AccessToken); err != nil {
		log.Printf("Error validating enrollment for user %d: %v", userID, err)
		http.Error(w, "Invalid enrollment token", http.StatusBadRequest)
		return
	}

	result, err := h.syncService.SyncTeller(r.Context(), userID, req.AccessToken)
	if err != nil {
		log.Printf("Error syncing new enrollment for user %d: %v", userID, err)
		http.Error(w, "Failed to sync accounts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// HandlePayments creates a payment (POST) or lists them (GET)
func (h *TellerHandler) HandlePayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreatePayment(w, r, userID)
	case http.MethodGet:
		h.handleListPayments(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePaymentContext returns the card metadata shown before a payment
// is submitted (statement balance, suggested amount).
func (h *TellerHandler) HandlePaymentContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	creditAccountID := r.URL.Query().Get("credit_account_id")
	if creditAccountID == "" {
		http.Error(w, "credit_account_id is required", http.StatusBadRequest)
		return
	}

	pc, err := h.paymentService.PrepareContext(r.Context(), userID, creditAccountID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNotCreditAccount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			writeAccountError(w, userID, creditAccountID, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pc)
}

func (h *TellerHandler) handleCreatePayment(w http.ResponseWriter, r *http.Request, userID int64) {
	var params payment.InitiateParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.paymentService.Initiate(r.Context(), userID, params)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidAmount),
			errors.Is(err, payment.ErrMissingPayee),
			errors.Is(err, payment.ErrNotBankAccount),
			errors.Is(err, payment.ErrNotCreditAccount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, payment.ErrInsufficientFunds):
			http.Error(w, "Insufficient funds", http.StatusUnprocessableEntity)
		case errors.Is(err, payment.ErrPayeeIneligible):
			http.Error(w, "Payee is not eligible for zelle", http.StatusUnprocessableEntity)
		case errors.Is(err, payment.ErrProviderRejected):
			http.Error(w, "Payment rejected by bank", http.StatusBadGateway)
		default:
			log.Printf("Error initiating payment for user %d: %v", userID, err)
			http.Error(w, "Failed to initiate payment", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(p)
}

func (h *TellerHandler) handleListPayments(w http.ResponseWriter, r *http.Request, userID int64) {
	payments, err := h.paymentService.ListPayments(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing payments for user %d: %v", userID, err)
		http.Error(w, "Failed to list payments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payments)
}

// HandlePaymentByID returns one payment so clients can poll its status
func (h *TellerHandler) HandlePaymentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid payment ID", http.StatusBadRequest)
		return
	}

	p, err := h.paymentService.GetPayment(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			http.Error(w, "Payment not found", http.StatusNotFound)
			return
		}
		log.Printf("Error loading payment %s for user %d: %v", id, userID, err)
		http.Error(w, "Failed to load payment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

// HandleAccountTransactions returns recent transactions for one of the
// user's bank-linked accounts, fetched live from Teller
func (h *TellerHandler) HandleAccountTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

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

	acc, err := h.accountService.GetAccount(r.Context(), accountID, userID)
	if err != nil {
		writeAccountError(w, userID, accountID, err)
		return
	}
	if acc.Provider != account.ProviderTeller || acc.AccessToken == "" {
		http.Error(w, "Account has no transaction feed", http.StatusUnprocessableEntity)
		return
	}

	count := 30
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 250 {
			http.Error(w, "Invalid count", http.StatusBadRequest)
			return
		}
		count = n
	}

	transactions, err := h.tellerClient.ListTransactions(r.Context(), acc.AccessToken, acc.ExternalID, count)
	if err != nil {
		log.Printf("Error listing transactions for account %s: %v", accountID, err)
		http.Error(w, "Bank provider unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactions)
}
