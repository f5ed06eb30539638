package payment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment lifecycle states. A payment walks preparing -> creating ->
// processing and settles to completed or failed; the record is updated
// at every transition so clients can show live progress.
const (
	StatusPreparing  = "preparing"
	StatusCreating   = "creating"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var (
	ErrPaymentNotFound    = errors.New("payment not found")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInsufficientFunds  = errors.New("insufficient funds in funding account")
	ErrNotBankAccount     = errors.New("funding account must be a bank account")
	ErrNotCreditAccount   = errors.New("target account must be a credit card")
	ErrMissingPayee       = errors.New("payee address is required")
	ErrPayeeIneligible    = errors.New("payee is not eligible for zelle")
	ErrProviderRejected   = errors.New("payment rejected by provider")
	ErrBalanceUnavailable = errors.New("funding balance unavailable")
)

// Context is the card metadata fetched before a payment is submitted.
// Teller reports no minimum due, so the full owed amount is suggested.
type Context struct {
	CreditAccountID  string          `json:"creditAccountId"`
	StatementBalance decimal.Decimal `json:"statementBalance"`
	SuggestedAmount  decimal.Decimal `json:"suggestedAmount"`
	AsOf             time.Time       `json:"asOf"`
}

// Payment is one credit-card payment initiated from the dashboard.
type Payment struct {
	ID                uuid.UUID       `json:"id"`
	UserID            int64           `json:"userId"`
	FundingAccountID  string          `json:"fundingAccountId"`
	CreditAccountID   string          `json:"creditAccountId"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Memo              string          `json:"memo,omitempty"`
	Status            string          `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// InitiateParams carries a new payment request.
type InitiateParams struct {
	FundingAccountID string          `json:"fundingAccountId"`
	CreditAccountID  string          `json:"creditAccountId"`
	Amount           decimal.Decimal `json:"amount"`
	Memo             string          `json:"memo"`
	PayeeAddress     string          `json:"payeeAddress"`
	PayeeName        string          `json:"payeeName"`
}

func (p InitiateParams) Validate() error {
	if p.FundingAccountID == "" || p.CreditAccountID == "" {
		return errors.New("funding and credit account IDs are required")
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.PayeeAddress == "" {
		return ErrMissingPayee
	}
	return nil
}
