package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"flint/internal/infrastructure/snaptrade"
	"flint/internal/shared/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrNotAdmin           = errors.New("admin access required")
)

type Service struct {
	repo   Repository
	broker snaptrade.ClientInterface
	jwt    *auth.JWT
}

func NewService(repo Repository, broker snaptrade.ClientInterface, jwt *auth.JWT) *Service {
	return &Service{repo: repo, broker: broker, jwt: jwt}
}

// Register creates a user and returns it with a session token.
func (s *Service) Register(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, "", ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, "", ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	u, err := s.repo.Create(ctx, email, hash)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return u, token, nil
}

// Login verifies credentials and returns the user with a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.Generate(u.ID, u.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issuing token: %w", err)
	}
	return u, token, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ConnectSnapTrade registers the user with the brokerage aggregator and
// stores the returned credentials. Re-connecting an already registered
// user is a no-op.
func (s *Service) ConnectSnapTrade(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.HasSnapTrade() {
		return u, nil
	}

	reg, err := s.broker.RegisterUser(ctx, fmt.Sprintf("flint-user-%d", id))
	if err != nil {
		return nil, fmt.Errorf("registering with brokerage: %w", err)
	}
	if err := s.repo.SetSnapTradeCredentials(ctx, id, reg.UserID, reg.UserSecret); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// ResetSnapTrade deletes the brokerage registration and creates a fresh
// one, invalidating all existing connections.
func (s *Service) ResetSnapTrade(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.HasSnapTrade() {
		creds := snaptrade.Credentials{UserID: u.SnapTradeUserID, UserSecret: u.SnapTradeSecret}
		if err := s.broker.DeleteUser(ctx, creds); err != nil {
			// The remote registration may already be gone.
			log.Printf("user: deleting brokerage registration for %d: %v", id, err)
		}
		if err := s.repo.ClearSnapTradeCredentials(ctx, id); err != nil {
			return nil, err
		}
	}

	reg, err := s.broker.RegisterUser(ctx, fmt.Sprintf("flint-user-%d-%s", id, randomSuffix()))
	if err != nil {
		return nil, fmt.Errorf("re-registering with brokerage: %w", err)
	}
	if err := s.repo.SetSnapTradeCredentials(ctx, id, reg.UserID, reg.UserSecret); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// randomSuffix keeps re-registrations from colliding with the deleted
// remote user id.
func randomSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Credentials returns the user's brokerage credentials for signed calls.
func (s *Service) Credentials(ctx context.Context, id int64) (snaptrade.Credentials, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return snaptrade.Credentials{}, err
	}
	if !u.HasSnapTrade() {
		return snaptrade.Credentials{}, ErrNotRegistered
	}
	return snaptrade.Credentials{UserID: u.SnapTradeUserID, UserSecret: u.SnapTradeSecret}, nil
}

// ListUsers returns every user. Callers must gate this on IsAdmin.
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// SetSubscriptionTier changes a user's tier. Callers must gate this on
// IsAdmin.
func (s *Service) SetSubscriptionTier(ctx context.Context, id int64, tier string) error {
	if !IsValidTier(tier) {
		return ErrInvalidTier
	}
	return s.repo.SetSubscriptionTier(ctx, id, tier)
}

// Stats rolls up the user base for the admin view.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalUsers: len(users)}
	for _, u := range users {
		if u.SubscriptionTier == TierPro {
			stats.ProUsers++
		}
		if u.HasSnapTrade() {
			stats.WithBrokerage++
		}
	}
	return stats, nil
}
