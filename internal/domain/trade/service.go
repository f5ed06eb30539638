package trade

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"flint/internal/domain/notification"
	"flint/internal/infrastructure/snaptrade"
	"flint/internal/shared/retry"
)

type Service struct {
	repo     Repository
	broker   snaptrade.ClientInterface
	notifier *notification.Service
	policy   retry.Policy
}

func NewService(repo Repository, broker snaptrade.ClientInterface, notifier *notification.Service, policy retry.Policy) *Service {
	return &Service{repo: repo, broker: broker, notifier: notifier, policy: policy}
}

// Place submits a market order to the brokerage, records it as pending
// and starts polling for a terminal status in the background. The
// pending order is returned immediately.
func (s *Service) Place(ctx context.Context, userID int64, creds snaptrade.Credentials, params PlaceParams) (*Order, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	units, _ := params.Units.Float64()
	placed, err := s.broker.PlaceOrder(ctx, creds, params.AccountID, params.Symbol, params.Action, units)
	if err != nil {
		return nil, fmt.Errorf("placing order with brokerage: %w", err)
	}

	now := time.Now()
	order := &Order{
		ID:               uuid.New(),
		UserID:           userID,
		AccountID:        params.AccountID,
		BrokerageOrderID: placed.BrokerageOrderID,
		Symbol:           params.Symbol,
		Action:           params.Action,
		Units:            params.Units,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("recording order: %w", err)
	}

	// Polling outlives the request, so it runs on a fresh context.
	go s.pollOrder(context.Background(), *order, creds)

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, userID int64, id uuid.UUID) (*Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// ListPending exposes stuck orders so the scheduler can resume polling
// after a restart.
func (s *Service) ListPending(ctx context.Context) ([]Order, error) {
	return s.repo.ListPending(ctx)
}

// PollOrder checks the brokerage once and settles the local record if
// the order reached a terminal state. It reports done=true when no
// further polling is needed.
func (s *Service) PollOrder(ctx context.Context, order Order, creds snaptrade.Credentials) (bool, error) {
	status, err := s.broker.GetOrderStatus(ctx, creds, order.AccountID, order.BrokerageOrderID)
	if err != nil {
		return false, err
	}

	switch strings.ToUpper(status.Status) {
	case "EXECUTED", "FILLED":
		var fill *decimal.Decimal
		if status.ExecutionPrice != nil {
			d := decimal.NewFromFloat(*status.ExecutionPrice)
			fill = &d
		}
		if err := s.repo.UpdateStatus(ctx, order.ID, StatusFilled, fill, ""); err != nil {
			return false, err
		}
		s.notifier.Notify(ctx, order.UserID, "Order filled",
			fmt.Sprintf("%s %s %s filled", order.Action, order.Units, order.Symbol), nil)
		return true, nil
	case "FAILED", "REJECTED", "CANCELED", "EXPIRED":
		if err := s.repo.UpdateStatus(ctx, order.ID, StatusFailed, nil, status.Status); err != nil {
			return false, err
		}
		s.notifier.Notify(ctx, order.UserID, "Order failed",
			fmt.Sprintf("%s %s %s did not fill", order.Action, order.Units, order.Symbol), nil)
		return true, nil
	default:
		return false, nil
	}
}

func (s *Service) pollOrder(ctx context.Context, order Order, creds snaptrade.Credentials) {
	err := s.policy.Do(ctx, func(ctx context.Context) (bool, error) {
		done, err := s.PollOrder(ctx, order, creds)
		if err != nil {
			// Transient brokerage errors just consume an attempt.
			log.Printf("trade: polling order %s: %v", order.ID, err)
			return false, nil
		}
		return done, nil
	})
	if err == nil {
		return
	}
	if errors.Is(err, retry.ErrMaxAttempts) || errors.Is(err, retry.ErrTimeout) {
		// Leave it pending; the scheduler job picks it up later.
		log.Printf("trade: order %s still pending after polling window", order.ID)
		return
	}
	log.Printf("trade: polling order %s aborted: %v", order.ID, err)
}
