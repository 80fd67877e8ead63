package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

type locationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository returns a Postgres-backed location repository.
func NewLocationRepository(pool *pgxpool.Pool) repository.LocationRepository {
	return &locationRepository{pool: pool}
}

func (r *locationRepository) GetByID(ctx context.Context, id string) (*domain.GeoLocation, error) {
	const query = `
	SELECT id, name, address, latitude, longitude, created_at, updated_at
	FROM geo_locations
	WHERE id = $1
	`
	var loc domain.GeoLocation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&loc.ID, &loc.Name, &loc.Address, &loc.Latitude, &loc.Longitude, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLocationNotFound
		}
		return nil, err
	}
	return &loc, nil
}

func (r *locationRepository) List(ctx context.Context, limit, offset int) ([]domain.GeoLocation, error) {
	const query = `
	SELECT id, name, address, latitude, longitude, created_at, updated_at
	FROM geo_locations
	ORDER BY name
	LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []domain.GeoLocation
	for rows.Next() {
		var loc domain.GeoLocation
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Latitude, &loc.Longitude, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *locationRepository) Create(ctx context.Context, location *domain.GeoLocation) (*domain.GeoLocation, error) {
	if location == nil || !location.ValidCoordinates() {
		return nil, domain.ErrInvalidPayload
	}
	if location.ID == "" {
		location.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO geo_locations (id, name, address, latitude, longitude)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		location.ID, location.Name, location.Address, location.Latitude, location.Longitude,
	).Scan(&location.CreatedAt, &location.UpdatedAt); err != nil {
		return nil, err
	}
	return location, nil
}
