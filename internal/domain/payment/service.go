package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flint/internal/domain/account"
	"flint/internal/domain/notification"
	"flint/internal/infrastructure/teller"
	"flint/internal/shared/retry"
)

type Service struct {
	repo     Repository
	accounts *account.Service
	bank     teller.ClientInterface
	notifier *notification.Service
	policy   retry.Policy
}

func NewService(repo Repository, accounts *account.Service, bank teller.ClientInterface, notifier *notification.Service, policy retry.Policy) *Service {
	return &Service{repo: repo, accounts: accounts, bank: bank, notifier: notifier, policy: policy}
}

// Initiate runs a credit-card payment through preparing and creating,
// then hands it to a background poller and returns it in processing
// state. Validation failures before the provider call surface as
// errors; the payment record captures everything after.
func (s *Service) Initiate(ctx context.Context, userID int64, params InitiateParams) (*Payment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	funding, err := s.accounts.GetAccount(ctx, params.FundingAccountID, userID)
	if err != nil {
		return nil, err
	}
	if funding.AccountType != account.TypeBank || funding.AccessToken == "" {
		return nil, ErrNotBankAccount
	}
	credit, err := s.accounts.GetAccount(ctx, params.CreditAccountID, userID)
	if err != nil {
		return nil, err
	}
	if !credit.IsCredit() {
		return nil, ErrNotCreditAccount
	}

	now := time.Now()
	p := &Payment{
		ID:               uuid.New(),
		UserID:           userID,
		FundingAccountID: params.FundingAccountID,
		CreditAccountID:  params.CreditAccountID,
		Amount:           params.Amount,
		Memo:             params.Memo,
		Status:           StatusPreparing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	if err := s.checkFunds(ctx, funding, params.Amount); err != nil {
		s.fail(ctx, p, err.Error())
		return nil, err
	}

	payee := teller.Payee{
		Scheme:  "zelle",
		Address: params.PayeeAddress,
		Name:    params.PayeeName,
		Type:    "business",
	}
	verified, err := s.bank.VerifyPayee(ctx, funding.AccessToken, funding.ExternalID, payee)
	if err != nil {
		s.fail(ctx, p, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrPayeeIneligible, err)
	}

	s.transition(ctx, p, StatusCreating, "", "")
	created, err := s.bank.CreatePayment(ctx, funding.AccessToken, funding.ExternalID, teller.PaymentParams{
		Amount: params.Amount.StringFixed(2),
		Memo:   params.Memo,
		Payee:  *verified,
	})
	if err != nil {
		s.fail(ctx, p, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	s.transition(ctx, p, StatusProcessing, created.ID, "")

	// Status polling outlives the request.
	go s.pollPayment(context.Background(), *p, funding.AccessToken, funding.ExternalID)

	return p, nil
}

// PrepareContext returns the card metadata the payment flow shows before
// submitting: the live amount owed on the card and a suggested payment.
// Falls back to the last synced balance when the live fetch fails.
func (s *Service) PrepareContext(ctx context.Context, userID int64, creditAccountID string) (*Context, error) {
	credit, err := s.accounts.GetAccount(ctx, creditAccountID, userID)
	if err != nil {
		return nil, err
	}
	if !credit.IsCredit() {
		return nil, ErrNotCreditAccount
	}

	owed := decimal.Zero
	switch {
	case credit.Ledger != nil:
		owed = credit.Ledger.Abs()
	case credit.Current != nil:
		owed = credit.Current.Abs()
	}

	if credit.Provider == account.ProviderTeller && credit.AccessToken != "" {
		live, err := s.bank.GetBalances(ctx, credit.AccessToken, credit.ExternalID)
		if err != nil {
			log.Printf("Payment prepare: live balance for %s unavailable: %v", credit.ID, err)
		} else if live.Ledger != nil {
			if v, err := decimal.NewFromString(*live.Ledger); err == nil {
				owed = v.Abs()
			}
		}
	}

	return &Context{
		CreditAccountID:  credit.ID,
		StatementBalance: owed,
		SuggestedAmount:  owed,
		AsOf:             time.Now(),
	}, nil
}

func (s *Service) GetPayment(ctx context.Context, userID int64, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (s *Service) ListPayments(ctx context.Context, userID int64) ([]Payment, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// checkFunds verifies the funding account can cover the amount using a
// live balance, not the cached sync.
func (s *Service) checkFunds(ctx context.Context, funding *account.ConnectedAccount, amount decimal.Decimal) error {
	balance, err := s.bank.GetBalances(ctx, funding.AccessToken, funding.ExternalID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBalanceUnavailable, err)
	}
	if balance.Available == nil {
		return ErrBalanceUnavailable
	}
	available, err := decimal.NewFromString(*balance.Available)
	if err != nil {
		return fmt.Errorf("%w: bad balance %q", ErrBalanceUnavailable, *balance.Available)
	}
	if available.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// PollPayment checks the provider once and settles the local record if
// the payment reached a terminal state.
func (s *Service) PollPayment(ctx context.Context, p Payment, accessToken, tellerAccountID string) (bool, error) {
	status, err := s.bank.GetPayment(ctx, accessToken, tellerAccountID, p.ProviderPaymentID)
	if err != nil {
		return false, err
	}

	switch status.Status {
	case "sent":
		if err := s.repo.UpdateStatus(ctx, p.ID, StatusCompleted, p.ProviderPaymentID, ""); err != nil {
			return false, err
		}
		s.notifier.Notify(ctx, p.UserID, "Payment sent",
			fmt.Sprintf("Your payment of %s was sent", p.Amount.StringFixed(2)), nil)
		return true, nil
	case "failed":
		if err := s.repo.UpdateStatus(ctx, p.ID, StatusFailed, p.ProviderPaymentID, "provider reported failure"); err != nil {
			return false, err
		}
		s.notifier.Notify(ctx, p.UserID, "Payment failed",
			fmt.Sprintf("Your payment of %s could not be sent", p.Amount.StringFixed(2)), nil)
		return true, nil
	default:
		return false, nil
	}
}

func (s *Service) pollPayment(ctx context.Context, p Payment, accessToken, tellerAccountID string) {
	err := s.policy.Do(ctx, func(ctx context.Context) (bool, error) {
		done, err := s.PollPayment(ctx, p, accessToken, tellerAccountID)
		if err != nil {
			log.Printf("payment: polling %s: %v", p.ID, err)
			return false, nil
		}
		return done, nil
	})
	if err == nil {
		return
	}
	if errors.Is(err, retry.ErrMaxAttempts) || errors.Is(err, retry.ErrTimeout) {
		// No sweep job re-checks payments, so the window expiring is
		// terminal: the record settles as failed.
		log.Printf("payment: %s did not settle within the polling window", p.ID)
		s.fail(ctx, &p, "status polling window expired")
		s.notifier.Notify(ctx, p.UserID, "Payment failed",
			fmt.Sprintf("Your payment of %s did not settle in time", p.Amount.StringFixed(2)), nil)
		return
	}
	log.Printf("payment: polling %s aborted: %v", p.ID, err)
}

func (s *Service) transition(ctx context.Context, p *Payment, status, providerPaymentID, reason string) {
	p.Status = status
	if providerPaymentID != "" {
		p.ProviderPaymentID = providerPaymentID
	}
	p.FailureReason = reason
	if err := s.repo.UpdateStatus(ctx, p.ID, status, p.ProviderPaymentID, reason); err != nil {
		log.Printf("payment: updating %s to %s: %v", p.ID, status, err)
	}
}

func (s *Service) fail(ctx context.Context, p *Payment, reason string) {
	s.transition(ctx, p, StatusFailed, "", reason)
}
