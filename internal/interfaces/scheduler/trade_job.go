package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"

	"flint/internal/domain/trade"
	"flint/internal/domain/user"
)

// PendingTradeJob sweeps orders that never reached a terminal state,
// typically because the server restarted while a poller was running.
type PendingTradeJob struct {
	trades *trade.Service
	users  *user.Service
}

// NewPendingTradeJob creates the pending-order sweep job
func NewPendingTradeJob(trades *trade.Service, users *user.Service) *PendingTradeJob {
	return &PendingTradeJob{trades: trades, users: users}
}

// Execute polls every pending order once
func (j *PendingTradeJob) Execute(ctx context.Context) error {
	pending, err := j.trades.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("listing pending orders: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	log.Printf("Sweeping %d pending orders", len(pending))

	failures := 0
	for _, order := range pending {
		creds, err := j.users.Credentials(ctx, order.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotRegistered) {
				// Credentials were reset while the order was open.
				log.Printf("Pending order %s has no brokerage credentials", order.ID)
				continue
			}
			failures++
			continue
		}
		if _, err := j.trades.PollOrder(ctx, order, creds); err != nil {
			log.Printf("Sweeping order %s: %v", order.ID, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("sweep completed with %d failures", failures)
	}
	return nil
}

// UserID returns "-" since the sweep spans users
func (j *PendingTradeJob) UserID() string {
	return "-"
}

// Description returns a human-readable description of the job
func (j *PendingTradeJob) Description() string {
	return "Pending order sweep"
}
