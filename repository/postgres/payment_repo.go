package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a Postgres-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool) repository.PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	if payment == nil || payment.TaskID == "" {
		return nil, domain.ErrInvalidPayload
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := insertPayment(ctx, tx, payment); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *paymentRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Payment, error) {
	const query = `
	SELECT id, task_id, amount, currency, collected_by, collected_at, note
	FROM payments
	WHERE task_id = $1
	ORDER BY collected_at DESC
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.TaskID, &p.Amount, &p.Currency, &p.CollectedBy, &p.CollectedAt, &p.Note); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
