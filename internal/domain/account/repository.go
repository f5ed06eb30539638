package account

import "context"

// Repository defines the interface for connected-account data access.
// Defined in the domain layer, implemented in the infrastructure layer.
type Repository interface {
	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id string) (*ConnectedAccount, error)

	// ListByUserID retrieves all non-removed accounts for a user
	ListByUserID(ctx context.Context, userID int64) ([]*ConnectedAccount, error)

	// Upsert creates or refreshes an account from a provider sync
	Upsert(ctx context.Context, params UpsertParams) (*ConnectedAccount, error)

	// SoftDelete marks an account as removed on disconnect
	SoftDelete(ctx context.Context, id string) error

	// Exists checks if an account with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}
