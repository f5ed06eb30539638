package account

import (
	"context"
	"errors"
)

// Service contains the business logic for connected-account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetAccount retrieves an account by ID and verifies user ownership
func (s *Service) GetAccount(ctx context.Context, accountID string, userID int64) (*ConnectedAccount, error) {
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Business rule: verify ownership
	if acc.UserID != userID {
		return nil, ErrForbidden
	}

	return acc, nil
}

// ListAccounts retrieves all connected accounts for a user
func (s *Service) ListAccounts(ctx context.Context, userID int64) ([]*ConnectedAccount, error) {
	if userID <= 0 {
		return nil, errors.New("valid user ID is required")
	}
	return s.repo.ListByUserID(ctx, userID)
}

// ListDisplays retrieves all accounts for a user normalized into the
// dashboard card model.
func (s *Service) ListDisplays(ctx context.Context, userID int64) ([]*ConnectedAccount, []DisplayBalance, error) {
	accounts, err := s.ListAccounts(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return accounts, Normalize(accounts), nil
}

// UpsertAccount creates or refreshes an account from a provider sync
func (s *Service) UpsertAccount(ctx context.Context, params UpsertParams) (*ConnectedAccount, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, params)
}

// DisconnectAccount soft-deletes an account after verifying ownership
func (s *Service) DisconnectAccount(ctx context.Context, accountID string, userID int64) error {
	if _, err := s.GetAccount(ctx, accountID, userID); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, accountID)
}

// AccountExists checks if an account exists
func (s *Service) AccountExists(ctx context.Context, accountID string) (bool, error) {
	return s.repo.Exists(ctx, accountID)
}
