package notification

import (
	"errors"
	"time"
)

var ErrTokenNotFound = errors.New("device token not found")

// DeviceToken is a push-notification registration for one device.
type DeviceToken struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	Platform  string    `json:"platform"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
