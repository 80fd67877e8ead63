package directory

import (
	"context"

	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

// UseCase manages the reusable reference entities tasks point at:
// geo locations and customers.
type UseCase struct {
	locations repository.LocationRepository
	customers repository.CustomerRepository
	logger    *zap.Logger
}

func New(locations repository.LocationRepository, customers repository.CustomerRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		locations: locations,
		customers: customers,
		logger:    logger,
	}
}

func (uc *UseCase) ListLocations(ctx context.Context, limit, offset int) ([]domain.GeoLocation, error) {
	return uc.locations.List(ctx, limit, offset)
}

func (uc *UseCase) CreateLocation(ctx context.Context, location *domain.GeoLocation) (*domain.GeoLocation, error) {
	if location == nil || location.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if !location.ValidCoordinates() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "latitude must be in [-90,90] and longitude in [-180,180]")
	}
	return uc.locations.Create(ctx, location)
}

func (uc *UseCase) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	return uc.customers.List(ctx, limit, offset)
}

func (uc *UseCase) CreateCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil || customer.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.customers.Create(ctx, customer)
}
