package notification

import (
	"context"
	"log"
)

// Messenger delivers push notifications. The firebase client satisfies
// this; tests substitute a mock.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

type Service struct {
	repo      Repository
	messenger Messenger
}

// NewService builds the notification service. messenger may be nil when
// push delivery is not configured; notifications are then dropped with a
// log line.
func NewService(repo Repository, messenger Messenger) *Service {
	return &Service{repo: repo, messenger: messenger}
}

func (s *Service) RegisterDevice(ctx context.Context, userID int64, token, platform string) (*DeviceToken, error) {
	return s.repo.Register(ctx, userID, token, platform)
}

func (s *Service) DeactivateDevice(ctx context.Context, token string) error {
	return s.repo.Deactivate(ctx, token)
}

// Notify sends a push to every active device the user has registered.
// Delivery failures are logged, not returned: callers fire and forget.
func (s *Service) Notify(ctx context.Context, userID int64, title, body string, data map[string]string) {
	if s.messenger == nil {
		log.Printf("notification: push disabled, dropping %q for user %d", title, userID)
		return
	}

	devices, err := s.repo.ListActiveByUserID(ctx, userID)
	if err != nil {
		log.Printf("notification: listing devices for user %d: %v", userID, err)
		return
	}
	if len(devices) == 0 {
		return
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.Token)
	}
	if err := s.messenger.SendMulticast(ctx, tokens, title, body, data); err != nil {
		log.Printf("notification: sending %q to user %d: %v", title, userID, err)
	}
}
