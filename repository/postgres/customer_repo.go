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

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool) repository.CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const query = `
	SELECT id, name, phone, address, created_at, updated_at
	FROM customers
	WHERE id = $1
	`
	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *customerRepository) List(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	const query = `
	SELECT id, name, phone, address, created_at, updated_at
	FROM customers
	ORDER BY name
	LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, clampLimit(limit), offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil || customer.Name == "" {
		return nil, domain.ErrInvalidPayload
	}
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO customers (id, name, phone, address)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		customer.ID, customer.Name, customer.Phone, customer.Address,
	).Scan(&customer.CreatedAt, &customer.UpdatedAt); err != nil {
		return nil, err
	}
	return customer, nil
}
