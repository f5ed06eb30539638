package snaptrade

import "context"

// ClientInterface abstracts the SnapTrade API client so domain services
// and tests can substitute their own implementation.
type ClientInterface interface {
	RegisterUser(ctx context.Context, userID string) (*Registration, error)
	DeleteUser(ctx context.Context, creds Credentials) error
	LoginPortalURL(ctx context.Context, creds Credentials) (string, error)
	ListAccounts(ctx context.Context, creds Credentials) ([]Account, error)
	ListPositions(ctx context.Context, creds Credentials, accountID string) ([]Position, error)
	GetQuotes(ctx context.Context, creds Credentials, accountID string, symbols []string) ([]SymbolQuote, error)
	PlaceOrder(ctx context.Context, creds Credentials, accountID, symbol, action string, units float64) (*Order, error)
	GetOrderStatus(ctx context.Context, creds Credentials, accountID, orderID string) (*Order, error)
}
