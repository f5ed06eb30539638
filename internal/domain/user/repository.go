package user

import "context"

// Repository defines the interface for user data access. The postgres
// implementation encrypts SnapTrade secrets before they touch the database.
type Repository interface {
	// Create inserts a new user and returns it with its assigned ID
	Create(ctx context.Context, email, passwordHash string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List retrieves all users (admin)
	List(ctx context.Context) ([]*User, error)

	// SetSnapTradeCredentials stores the userId/userSecret pair issued by SnapTrade
	SetSnapTradeCredentials(ctx context.Context, userID int64, snapTradeUserID, snapTradeSecret string) error

	// ClearSnapTradeCredentials removes the stored SnapTrade registration
	ClearSnapTradeCredentials(ctx context.Context, userID int64) error

	// SetSubscriptionTier updates the user's subscription tier
	SetSubscriptionTier(ctx context.Context, userID int64, tier string) error
}
