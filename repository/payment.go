package repository

import (
	"context"

	"github.com/namviet/fieldops/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.Payment, error)
}
