package user

import (
	"errors"
	"time"
)

// Subscription tiers
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Domain errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInvalidTier   = errors.New("invalid subscription tier")
	ErrNotRegistered = errors.New("user has no SnapTrade registration")
)

// User is an application user. SnapTrade issues a userId/userSecret pair on
// registration which is stored (encrypted at rest) and reused on every
// brokerage call.
type User struct {
	ID               int64     `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	SubscriptionTier string    `json:"subscriptionTier"`
	IsAdmin          bool      `json:"isAdmin"`
	SnapTradeUserID  string    `json:"-"`
	SnapTradeSecret  string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Stats summarizes the user base.
type Stats struct {
	TotalUsers    int `json:"totalUsers"`
	ProUsers      int `json:"proUsers"`
	WithBrokerage int `json:"withBrokerage"`
}

// HasSnapTrade reports whether the user completed SnapTrade registration.
func (u *User) HasSnapTrade() bool {
	return u.SnapTradeUserID != "" && u.SnapTradeSecret != ""
}

// IsValidTier checks if the provided subscription tier is valid.
func IsValidTier(tier string) bool {
	return tier == TierFree || tier == TierPro
}
