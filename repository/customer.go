package repository

import (
	"context"

	"github.com/namviet/fieldops/domain"
)

type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, limit, offset int) ([]domain.Customer, error)
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
}
