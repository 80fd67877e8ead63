package repository

import (
	"context"

	"github.com/namviet/fieldops/domain"
)

type ActivityFilter struct {
	UserID string
	Topic  string
	Action string
	Limit  int
	Offset int
}

// ActivityRepository is append-only: records are never updated or removed.
type ActivityRepository interface {
	Append(ctx context.Context, activity *domain.Activity) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
}
