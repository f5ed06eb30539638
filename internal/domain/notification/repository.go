package notification

import "context"

// Repository persists device tokens. Register is an upsert on the token
// value so re-registering a device reactivates it.
type Repository interface {
	Register(ctx context.Context, userID int64, token, platform string) (*DeviceToken, error)
	Deactivate(ctx context.Context, token string) error
	ListActiveByUserID(ctx context.Context, userID int64) ([]DeviceToken, error)
}
