package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"flint/internal/domain/user"
	"flint/internal/shared/middleware"
)

type AdminHandler struct {
	userService *user.Service
}

func NewAdminHandler(userService *user.Service) *AdminHandler {
	return &AdminHandler{userService: userService}
}

type SetTierRequest struct {
	Tier string `json:"tier"`
}

// HandleListUsers returns every user. Admin only.
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.requireAdmin(w, r) {
		return
	}

	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		http.Error(w, "Failed to list users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

// HandleStats returns user-base totals. Admin only.
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.requireAdmin(w, r) {
		return
	}

	stats, err := h.userService.Stats(r.Context())
	if err != nil {
		log.Printf("Error computing user stats: %v", err)
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// HandleSetTier changes a user's subscription tier. Admin only.
func (h *AdminHandler) HandleSetTier(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.requireAdmin(w, r) {
		return
	}

	targetID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var req SetTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.SetSubscriptionTier(r.Context(), targetID, req.Tier); err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidTier):
			http.Error(w, "Invalid tier", http.StatusBadRequest)
		case errors.Is(err, user.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			log.Printf("Error setting tier for user %d: %v", targetID, err)
			http.Error(w, "Failed to set tier", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// requireAdmin verifies the authenticated user has the admin flag. It
// writes the error response itself and reports whether to continue.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return false
	}

	u, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		log.Printf("Error loading user %d: %v", userID, err)
		http.Error(w, "Failed to load user", http.StatusInternalServerError)
		return false
	}
	if !u.IsAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return false
	}
	return true
}
