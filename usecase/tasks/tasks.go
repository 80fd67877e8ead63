package tasks

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

// Config tunes administrative lifecycle rules.
type Config struct {
	// RequireExpectedRevenue gates scheduling on a set expected-revenue
	// amount when revenue tracking is in use.
	RequireExpectedRevenue bool
}

// UseCase covers administrative task operations: CRUD, scheduling
// (PREPARING -> READY), and hold/resume. Check-in and check-out are the
// only ways a task enters IN_PROGRESS or COMPLETED; they live in the
// checkin package.
type UseCase struct {
	tasks  repository.TaskRepository
	cfg    Config
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		cfg:    cfg,
		logger: logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return uc.tasks.List(ctx, filter)
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	task.Status = domain.StatusPreparing
	return uc.tasks.Create(ctx, task)
}

// UpdateTask edits the administrative fields. Once a task has left
// PREPARING the scheduling preconditions keep holding: the assignee list
// cannot be cleared, nor the expected revenue when revenue tracking is
// in use.
func (uc *UseCase) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.ID == "" {
		return nil, domain.ErrInvalidPayload
	}

	current, err := uc.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.StatusPreparing {
		if len(task.AssigneeIDs) == 0 {
			return nil, domain.NewError(domain.ErrCodeInvalid, "cannot clear assignees once the task is scheduled")
		}
		if uc.cfg.RequireExpectedRevenue && task.ExpectedRevenue == nil {
			return nil, domain.NewError(domain.ErrCodeInvalid, "cannot clear expected revenue once the task is scheduled")
		}
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ScheduleTask finalizes a prepared task. Requires a non-empty assignee
// list and, when revenue tracking is enabled, a set expected-revenue
// amount.
func (uc *UseCase) ScheduleTask(ctx context.Context, taskID, actingUserID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusPreparing {
		return nil, domain.NewInvalidTransition(task.Status, domain.StatusReady)
	}
	if len(task.AssigneeIDs) == 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "cannot schedule a task without assignees")
	}
	if uc.cfg.RequireExpectedRevenue && task.ExpectedRevenue == nil {
		return nil, domain.NewError(domain.ErrCodeInvalid, "cannot schedule a task without an expected revenue amount")
	}

	activity, err := lifecycleActivity(actingUserID, task.ID, domain.ActionTaskScheduled, nil)
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.Transition(ctx, repository.TransitionParams{
		TaskID:   task.ID,
		From:     domain.StatusPreparing,
		To:       domain.StatusReady,
		Activity: activity,
	}); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, taskID)
}

// HoldTask suspends a non-terminal task, remembering the state it was
// suspended from. StartedAt is untouched.
func (uc *UseCase) HoldTask(ctx context.Context, taskID, actingUserID, reason string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.CanTransition(domain.StatusOnHold) {
		return nil, domain.NewInvalidTransition(task.Status, domain.StatusOnHold)
	}

	suspendedFrom := task.Status
	activity, err := lifecycleActivity(actingUserID, task.ID, domain.ActionTaskHeld, map[string]string{"reason": reason})
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.Transition(ctx, repository.TransitionParams{
		TaskID:        task.ID,
		From:          task.Status,
		To:            domain.StatusOnHold,
		SuspendedFrom: &suspendedFrom,
		Activity:      activity,
	}); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, taskID)
}

// ResumeTask returns a held task to the state it was suspended from.
func (uc *UseCase) ResumeTask(ctx context.Context, taskID, actingUserID string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusOnHold || task.SuspendedFrom == nil {
		return nil, domain.NewInvalidTransition(task.Status, domain.StatusReady)
	}

	target := *task.SuspendedFrom
	activity, err := lifecycleActivity(actingUserID, task.ID, domain.ActionTaskResumed, map[string]string{"resumed_to": string(target)})
	if err != nil {
		return nil, err
	}
	if err := uc.tasks.Transition(ctx, repository.TransitionParams{
		TaskID:   task.ID,
		From:     domain.StatusOnHold,
		To:       target,
		Activity: activity,
	}); err != nil {
		return nil, err
	}
	return uc.tasks.GetByID(ctx, taskID)
}

func lifecycleActivity(userID, taskID string, action domain.ActivityAction, extra map[string]string) (*domain.Activity, error) {
	payload := map[string]string{"task_id": taskID}
	for k, v := range extra {
		if v != "" {
			payload[k] = v
		}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &domain.Activity{
		UserID:    userID,
		Topic:     domain.TopicTask,
		Action:    action,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}
