package repository

import (
	"context"

	"github.com/namviet/fieldops/domain"
)

type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.GeoLocation, error)
	List(ctx context.Context, limit, offset int) ([]domain.GeoLocation, error)
	Create(ctx context.Context, location *domain.GeoLocation) (*domain.GeoLocation, error)
}
