package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Providers an account can be connected through.
const (
	ProviderTeller    = "teller"
	ProviderSnapTrade = "snaptrade"
)

// Account types as reported by the providers.
const (
	TypeBank       = "bank"
	TypeCredit     = "credit"
	TypeInvestment = "investment"
	TypeCrypto     = "crypto"
)

var accountTypes = map[string]struct{}{
	TypeBank:       {},
	TypeCredit:     {},
	TypeInvestment: {},
	TypeCrypto:     {},
}

var providers = map[string]struct{}{
	ProviderTeller:    {},
	ProviderSnapTrade: {},
}

// Domain errors
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidProvider    = errors.New("invalid provider")
	ErrAccountNotFound    = errors.New("account not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")
)

// ConnectedAccount is a provider-linked financial account. Balance fields
// are provider-reported snapshots, never locally computed ledgers; any of
// them may be missing if the provider did not return it on the last sync.
type ConnectedAccount struct {
	ID           string           `json:"id"`
	UserID       int64            `json:"userId"`
	Provider     string           `json:"provider"`
	ExternalID   string           `json:"externalId"`
	Name         string           `json:"name"`
	Institution  string           `json:"institution"`
	AccountType  string           `json:"accountType"`
	Currency     string           `json:"currency"`
	AccessToken  string           `json:"-"`
	Current      *decimal.Decimal `json:"currentBalance"`
	Available    *decimal.Decimal `json:"availableBalance"`
	Ledger       *decimal.Decimal `json:"ledgerBalance"`
	CreditLimit  *decimal.Decimal `json:"creditLimit"`
	LastSyncedAt time.Time        `json:"lastSyncedAt"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	Removed      bool             `json:"removed"`
}

// IsCredit reports whether the account carries debt rather than assets.
func (a *ConnectedAccount) IsCredit() bool {
	return a.AccountType == TypeCredit
}

// UpsertParams contains parameters for creating or refreshing an account
// from a provider sync.
type UpsertParams struct {
	ID          string
	UserID      int64
	Provider    string
	ExternalID  string
	Name        string
	Institution string
	AccountType string
	Currency    string
	AccessToken string
	Current     *decimal.Decimal
	Available   *decimal.Decimal
	Ledger      *decimal.Decimal
	CreditLimit *decimal.Decimal
}

// Validate validates the upsert parameters
func (p UpsertParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.UserID <= 0 {
		return errors.New("valid user ID is required")
	}
	if p.Name == "" {
		return errors.New("account name is required")
	}
	if !IsValidProvider(p.Provider) {
		return ErrInvalidProvider
	}
	if !IsValidAccountType(p.AccountType) {
		return ErrInvalidAccountType
	}
	if p.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

// IsValidAccountType checks if the provided account type is valid.
func IsValidAccountType(t string) bool {
	_, ok := accountTypes[t]
	return ok
}

// IsValidProvider checks if the provided provider name is valid.
func IsValidProvider(p string) bool {
	_, ok := providers[p]
	return ok
}
