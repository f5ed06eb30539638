package snaptrade

import "context"

type contextKey struct{}

type requestCredentials struct {
	creds     Credentials
	accountID string
}

// WithCredentials attaches a user's SnapTrade credentials (and the account
// to quote through) to the context. The market-data quote provider picks
// them up so authenticated broker quotes can be tried first for users who
// have a brokerage connected.
func WithCredentials(ctx context.Context, creds Credentials, accountID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestCredentials{creds: creds, accountID: accountID})
}

// CredentialsFromContext extracts credentials previously attached with
// WithCredentials.
func CredentialsFromContext(ctx context.Context) (Credentials, string, bool) {
	rc, ok := ctx.Value(contextKey{}).(requestCredentials)
	if !ok {
		return Credentials{}, "", false
	}
	return rc.creds, rc.accountID, true
}
