package repository

import (
	"context"
	"time"

	"github.com/namviet/fieldops/domain"
)

type TaskFilter struct {
	AssigneeID string
	Status     string
	CustomerID string
	Limit      int
	Offset     int
}

// TransitionParams describes a single lifecycle edge together with the
// audit record that evidences it. Implementations must apply the status
// change conditionally on From (at-most-one winner per edge) and commit
// the activity append in the same transaction: if the append fails, the
// status must not change.
type TransitionParams struct {
	TaskID string
	From   domain.TaskStatus
	To     domain.TaskStatus

	// SuspendedFrom is written as-is: set on hold, nil on every other
	// edge (clearing any previous suspension marker).
	SuspendedFrom *domain.TaskStatus

	StartedAt   *time.Time
	CompletedAt *time.Time

	Activity *domain.Activity
	Payment  *domain.Payment
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Transition(ctx context.Context, params TransitionParams) error
}
