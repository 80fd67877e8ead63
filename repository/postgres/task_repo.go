package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, suspended_from, customer_id, location_id,
	assignee_ids, revenue_amount, revenue_currency, scheduled_at, started_at, completed_at,
	created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR $1 = ANY(assignee_ids))
	  AND ($2 = '' OR status = $2)
	  AND ($3 = '' OR customer_id = $3)
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`
	rows, err := r.pool.Query(ctx, query,
		filter.AssigneeID, filter.Status, filter.CustomerID, clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = domain.StatusPreparing
	}

	const query = `
	INSERT INTO tasks (id, title, description, status, customer_id, location_id,
		assignee_ids, revenue_amount, revenue_currency, scheduled_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at
	`

	amount, currency := revenueColumns(task.ExpectedRevenue)

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.CustomerID,
		task.LocationID,
		task.AssigneeIDs,
		amount,
		currency,
		task.ScheduledAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		customer_id = $4,
		location_id = $5,
		assignee_ids = $6,
		revenue_amount = $7,
		revenue_currency = $8,
		scheduled_at = $9,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	amount, currency := revenueColumns(task.ExpectedRevenue)

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.CustomerID,
		task.LocationID,
		task.AssigneeIDs,
		amount,
		currency,
		task.ScheduledAt,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

// Transition applies a lifecycle edge and its audit record as one atomic
// unit. The status update is conditional on the expected current status:
// zero affected rows means a concurrent caller won the edge (or the edge
// was never legal) and the whole operation is rejected.
func (r *taskRepository) Transition(ctx context.Context, params repository.TransitionParams) error {
	if params.Activity == nil {
		return domain.ErrInvalidPayload
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const update = `
	UPDATE tasks
	SET status = $3,
		suspended_from = $4,
		started_at = COALESCE($5, started_at),
		completed_at = COALESCE($6, completed_at),
		updated_at = NOW()
	WHERE id = $1 AND status = $2
	`
	tag, err := tx.Exec(ctx, update,
		params.TaskID,
		params.From,
		params.To,
		params.SuspendedFrom,
		params.StartedAt,
		params.CompletedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.transitionConflict(ctx, params)
	}

	if err := insertActivity(ctx, tx, params.Activity); err != nil {
		return err
	}

	if params.Payment != nil {
		if err := insertPayment(ctx, tx, params.Payment); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// transitionConflict distinguishes a missing task from a lost race.
func (r *taskRepository) transitionConflict(ctx context.Context, params repository.TransitionParams) error {
	var current domain.TaskStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM tasks WHERE id = $1`, params.TaskID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTaskNotFound
	}
	if err != nil {
		return err
	}
	return domain.NewInvalidTransition(current, params.To)
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		suspendedFrom *string
		amount        *int64
		currency      *string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&suspendedFrom,
		&task.CustomerID,
		&task.LocationID,
		&task.AssigneeIDs,
		&amount,
		&currency,
		&task.ScheduledAt,
		&task.StartedAt,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if suspendedFrom != nil {
		status := domain.TaskStatus(*suspendedFrom)
		task.SuspendedFrom = &status
	}
	if amount != nil {
		task.ExpectedRevenue = &domain.Money{Amount: *amount}
		if currency != nil {
			task.ExpectedRevenue.Currency = *currency
		}
	}

	return &task, nil
}

func revenueColumns(m *domain.Money) (*int64, *string) {
	if m == nil {
		return nil, nil
	}
	return &m.Amount, &m.Currency
}

func insertActivity(ctx context.Context, tx pgx.Tx, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	const query = `
	INSERT INTO activities (id, user_id, topic, action, payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.Exec(ctx, query,
		activity.ID,
		activity.UserID,
		activity.Topic,
		activity.Action,
		rawJSON(activity.Payload),
		activity.CreatedAt,
	)
	return err
}

func insertPayment(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CollectedAt.IsZero() {
		payment.CollectedAt = time.Now()
	}
	const query = `
	INSERT INTO payments (id, task_id, amount, currency, collected_by, collected_at, note)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		payment.ID,
		payment.TaskID,
		payment.Amount,
		payment.Currency,
		payment.CollectedBy,
		payment.CollectedAt,
		payment.Note,
	)
	return err
}

func rawJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
