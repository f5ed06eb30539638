// Package sync refreshes connected accounts from their providers,
// normalizing Teller bank data and SnapTrade brokerage data into the
// shared account model.
package sync

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"flint/internal/domain/account"
	"flint/internal/infrastructure/snaptrade"
	"flint/internal/infrastructure/teller"
)

// Result summarizes one sync run.
type Result struct {
	Synced int      `json:"synced"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

type Service struct {
	accounts *account.Service
	bank     teller.ClientInterface
	broker   snaptrade.ClientInterface
}

func NewService(accounts *account.Service, bank teller.ClientInterface, broker snaptrade.ClientInterface) *Service {
	return &Service{accounts: accounts, bank: bank, broker: broker}
}

// SyncTeller refreshes every account reachable with the given access
// token. Individual account failures are collected, not fatal.
func (s *Service) SyncTeller(ctx context.Context, userID int64, accessToken string) (*Result, error) {
	tellerAccounts, err := s.bank.ListAccounts(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("listing teller accounts: %w", err)
	}

	result := &Result{}
	for _, ta := range tellerAccounts {
		if err := s.syncTellerAccount(ctx, userID, accessToken, ta); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ta.ID, err))
			log.Printf("sync: teller account %s: %v", ta.ID, err)
			continue
		}
		result.Synced++
	}
	return result, nil
}

func (s *Service) syncTellerAccount(ctx context.Context, userID int64, accessToken string, ta teller.Account) error {
	balance, err := s.bank.GetBalances(ctx, accessToken, ta.ID)
	if err != nil {
		return fmt.Errorf("fetching balances: %w", err)
	}

	params := account.UpsertParams{
		ID:          accountID(account.ProviderTeller, ta.ID),
		UserID:      userID,
		Provider:    account.ProviderTeller,
		ExternalID:  ta.ID,
		Name:        ta.Name,
		Institution: ta.Institution.Name,
		AccountType: tellerAccountType(ta),
		Currency:    ta.Currency,
		AccessToken: accessToken,
		Ledger:      parseAmount(balance.Ledger),
		Available:   parseAmount(balance.Available),
	}
	// Teller reports a credit card's spent amount as its ledger balance.
	if params.AccountType == account.TypeCredit {
		params.Current = params.Ledger
	}

	_, err = s.accounts.UpsertAccount(ctx, params)
	return err
}

// SyncSnapTrade refreshes the user's brokerage accounts using their
// stored SnapTrade credentials.
func (s *Service) SyncSnapTrade(ctx context.Context, userID int64, creds snaptrade.Credentials) (*Result, error) {
	brokerAccounts, err := s.broker.ListAccounts(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("listing brokerage accounts: %w", err)
	}

	result := &Result{}
	for _, ba := range brokerAccounts {
		params := account.UpsertParams{
			ID:          accountID(account.ProviderSnapTrade, ba.ID),
			UserID:      userID,
			Provider:    account.ProviderSnapTrade,
			ExternalID:  ba.ID,
			Name:        ba.Name,
			Institution: ba.Institution,
			AccountType: snaptradeAccountType(ba),
			Current:     snaptradeTotal(ba),
		}
		if ba.Balance.Total != nil {
			params.Currency = ba.Balance.Total.Currency
		}
		if _, err := s.accounts.UpsertAccount(ctx, params); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ba.ID, err))
			log.Printf("sync: brokerage account %s: %v", ba.ID, err)
			continue
		}
		result.Synced++
	}
	return result, nil
}

// accountID derives a stable internal ID so repeated syncs hit the same
// row.
func accountID(provider, externalID string) string {
	return provider + "_" + externalID
}

func tellerAccountType(ta teller.Account) string {
	if ta.Type == "credit" || ta.Subtype == "credit_card" {
		return account.TypeCredit
	}
	return account.TypeBank
}

func snaptradeAccountType(ba snaptrade.Account) string {
	if strings.EqualFold(ba.RawType, "CRYPTO") {
		return account.TypeCrypto
	}
	return account.TypeInvestment
}

func snaptradeTotal(ba snaptrade.Account) *decimal.Decimal {
	if ba.Balance.Total == nil {
		return nil
	}
	d := decimal.NewFromFloat(ba.Balance.Total.Amount)
	return &d
}

// parseAmount converts a provider balance string to a decimal, treating
// missing or malformed values as absent.
func parseAmount(s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		log.Printf("sync: unparseable balance %q", *s)
		return nil
	}
	return &d
}
