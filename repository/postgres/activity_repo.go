package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed append-only activity log.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Append(ctx context.Context, activity *domain.Activity) error {
	if activity == nil {
		return domain.ErrInvalidPayload
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := insertActivity(ctx, tx, activity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *activityRepository) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	const query = `
	SELECT id, user_id, topic, action, payload, created_at
	FROM activities
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR topic = $2)
	  AND ($3 = '' OR action = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.UserID, filter.Topic, filter.Action, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var payload []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.Topic, &a.Action, &payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Payload = payload
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
