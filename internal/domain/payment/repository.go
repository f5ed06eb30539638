package payment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByUserID(ctx context.Context, userID int64) ([]Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, providerPaymentID, failureReason string) error
}
