package teller

import "context"

// ClientInterface abstracts the Teller API client so domain services and
// tests can substitute their own implementation.
type ClientInterface interface {
	ConnectInit() ConnectConfig
	ExchangeToken(ctx context.Context, accessToken string) ([]Account, error)
	ListAccounts(ctx context.Context, accessToken string) ([]Account, error)
	GetBalances(ctx context.Context, accessToken, accountID string) (*Balance, error)
	ListTransactions(ctx context.Context, accessToken, accountID string, count int) ([]Transaction, error)
	VerifyPayee(ctx context.Context, accessToken, accountID string, payee Payee) (*Payee, error)
	CreatePayment(ctx context.Context, accessToken, accountID string, params PaymentParams) (*Payment, error)
	GetPayment(ctx context.Context, accessToken, accountID, paymentID string) (*Payment, error)
}
