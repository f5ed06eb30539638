package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"flint/internal/domain/trade"
	"flint/internal/domain/user"
	"flint/internal/shared/middleware"
)

type TradeHandler struct {
	tradeService *trade.Service
	userService  *user.Service
}

func NewTradeHandler(tradeService *trade.Service, userService *user.Service) *TradeHandler {
	return &TradeHandler{tradeService: tradeService, userService: userService}
}

// HandleOrders places an order (POST) or lists them (GET)
func (h *TradeHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handlePlaceOrder(w, r, userID)
	case http.MethodGet:
		h.handleListOrders(w, r, userID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TradeHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request, userID int64) {
	var params trade.PlaceParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	creds, err := h.userService.Credentials(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotRegistered) {
			http.Error(w, "No brokerage connected", http.StatusPreconditionFailed)
			return
		}
		log.Printf("Error loading brokerage credentials for user %d: %v", userID, err)
		http.Error(w, "Failed to place order", http.StatusInternalServerError)
		return
	}

	order, err := h.tradeService.Place(r.Context(), userID, creds, params)
	if err != nil {
		switch {
		case errors.Is(err, trade.ErrInvalidAction),
			errors.Is(err, trade.ErrInvalidUnits),
			errors.Is(err, trade.ErrMissingSymbol),
			errors.Is(err, trade.ErrMissingAccount):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Error placing order for user %d: %v", userID, err)
			http.Error(w, "Failed to place order", http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(order)
}

func (h *TradeHandler) handleListOrders(w http.ResponseWriter, r *http.Request, userID int64) {
	orders, err := h.tradeService.ListOrders(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing orders for user %d: %v", userID, err)
		http.Error(w, "Failed to list orders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

// HandleOrderByID returns one order so clients can poll its status
func (h *TradeHandler) HandleOrderByID(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	order, err := h.tradeService.GetOrder(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, trade.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		log.Printf("Error loading order %s for user %d: %v", id, userID, err)
		http.Error(w, "Failed to load order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}
