package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

// UseCase exposes the activity log for review. Managers use it to go
// through warning-flagged check-ins and account-deletion trails; the
// log itself is append-only and never edited from here.
type UseCase struct {
	activities repository.ActivityRepository
	logger     *zap.Logger
}

func New(activities repository.ActivityRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		activities: activities,
		logger:     logger,
	}
}

func (uc *UseCase) ListActivities(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	if filter.Action != "" && filter.Topic == "" {
		// Action tags are namespaced by topic; an action filter without
		// a topic would silently match nothing for misspelled tags.
		switch domain.ActivityAction(filter.Action) {
		case domain.ActionTaskScheduled, domain.ActionTaskCheckedIn, domain.ActionTaskCompleted,
			domain.ActionTaskHeld, domain.ActionTaskResumed:
			filter.Topic = domain.TopicTask
		case domain.ActionAccountDeletionInitiated, domain.ActionAccountDeletionCompleted,
			domain.ActionAccountDeletionFailed, domain.ActionAccountDeletionAlreadyDeleted:
			filter.Topic = domain.TopicAccount
		}
	}
	return uc.activities.List(ctx, filter)
}
