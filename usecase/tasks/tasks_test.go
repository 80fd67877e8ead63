package tasks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
)

type fakeTaskRepo struct {
	mu          sync.Mutex
	task        *domain.Task
	transitions []repository.TransitionParams
	updates     []*domain.Task
}

func (f *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.task == nil || f.task.ID != id {
		return nil, domain.ErrTaskNotFound
	}
	copied := *f.task
	return &copied, nil
}

func (f *fakeTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return nil, nil
}

func (f *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.task = task
	return task, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, task)
	return nil
}

func (f *fakeTaskRepo) Transition(ctx context.Context, params repository.TransitionParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.task == nil || f.task.ID != params.TaskID {
		return domain.ErrTaskNotFound
	}
	if f.task.Status != params.From {
		return domain.NewInvalidTransition(f.task.Status, params.To)
	}
	f.task.Status = params.To
	f.task.SuspendedFrom = params.SuspendedFrom
	f.transitions = append(f.transitions, params)
	return nil
}

func preparedTask() *domain.Task {
	return &domain.Task{
		ID:              "task-1",
		Title:           "Replace modem",
		Status:          domain.StatusPreparing,
		AssigneeIDs:     []string{"worker-1"},
		ExpectedRevenue: &domain.Money{Amount: 500000, Currency: "VND"},
	}
}

func TestCreateTaskForcesPreparing(t *testing.T) {
	repo := &fakeTaskRepo{}
	uc := New(repo, Config{}, nil)

	created, err := uc.CreateTask(context.Background(), &domain.Task{
		Title:  "New install",
		Status: domain.StatusCompleted, // client-supplied status is ignored
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPreparing, created.Status)

	_, err = uc.CreateTask(context.Background(), &domain.Task{})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestScheduleTask(t *testing.T) {
	repo := &fakeTaskRepo{task: preparedTask()}
	uc := New(repo, Config{RequireExpectedRevenue: true}, nil)

	task, err := uc.ScheduleTask(context.Background(), "task-1", "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, task.Status)

	require.Len(t, repo.transitions, 1)
	params := repo.transitions[0]
	assert.Equal(t, domain.StatusPreparing, params.From)
	assert.Equal(t, domain.StatusReady, params.To)
	require.NotNil(t, params.Activity)
	assert.Equal(t, domain.ActionTaskScheduled, params.Activity.Action)
	assert.Equal(t, "dispatcher-1", params.Activity.UserID)
}

func TestUpdateTaskCannotClearAssigneesAfterScheduling(t *testing.T) {
	task := preparedTask()
	task.Status = domain.StatusReady
	repo := &fakeTaskRepo{task: task}
	uc := New(repo, Config{}, nil)

	edit := preparedTask()
	edit.AssigneeIDs = nil
	_, err := uc.UpdateTask(context.Background(), edit)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Empty(t, repo.updates)

	// A non-empty replacement list is fine.
	edit.AssigneeIDs = []string{"worker-2"}
	updated, err := uc.UpdateTask(context.Background(), edit)
	require.NoError(t, err)
	assert.Equal(t, []string{"worker-2"}, updated.AssigneeIDs)
	assert.Len(t, repo.updates, 1)
}

func TestUpdateTaskCannotClearRevenueAfterScheduling(t *testing.T) {
	task := preparedTask()
	task.Status = domain.StatusInProgress
	repo := &fakeTaskRepo{task: task}
	uc := New(repo, Config{RequireExpectedRevenue: true}, nil)

	edit := preparedTask()
	edit.ExpectedRevenue = nil
	_, err := uc.UpdateTask(context.Background(), edit)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Empty(t, repo.updates)
}

func TestUpdateTaskUnrestrictedWhilePreparing(t *testing.T) {
	repo := &fakeTaskRepo{task: preparedTask()}
	uc := New(repo, Config{RequireExpectedRevenue: true}, nil)

	edit := preparedTask()
	edit.AssigneeIDs = nil
	edit.ExpectedRevenue = nil
	_, err := uc.UpdateTask(context.Background(), edit)
	require.NoError(t, err)
	assert.Len(t, repo.updates, 1)
}

func TestScheduleTaskRequiresAssignees(t *testing.T) {
	task := preparedTask()
	task.AssigneeIDs = nil
	repo := &fakeTaskRepo{task: task}
	uc := New(repo, Config{}, nil)

	_, err := uc.ScheduleTask(context.Background(), "task-1", "dispatcher-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Empty(t, repo.transitions)
}

func TestScheduleTaskRequiresRevenueWhenEnabled(t *testing.T) {
	task := preparedTask()
	task.ExpectedRevenue = nil
	repo := &fakeTaskRepo{task: task}

	_, err := New(repo, Config{RequireExpectedRevenue: true}, nil).
		ScheduleTask(context.Background(), "task-1", "dispatcher-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	// With the rule disabled the same task schedules fine.
	scheduled, err := New(repo, Config{}, nil).
		ScheduleTask(context.Background(), "task-1", "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, scheduled.Status)
}

func TestScheduleTaskWrongState(t *testing.T) {
	task := preparedTask()
	task.Status = domain.StatusReady
	repo := &fakeTaskRepo{task: task}
	uc := New(repo, Config{}, nil)

	_, err := uc.ScheduleTask(context.Background(), "task-1", "dispatcher-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))
}

func TestHoldAndResumeRoundTrip(t *testing.T) {
	task := preparedTask()
	task.Status = domain.StatusInProgress
	repo := &fakeTaskRepo{task: task}
	uc := New(repo, Config{}, nil)

	held, err := uc.HoldTask(context.Background(), "task-1", "dispatcher-1", "customer rescheduled")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOnHold, held.Status)
	require.NotNil(t, held.SuspendedFrom)
	assert.Equal(t, domain.StatusInProgress, *held.SuspendedFrom)

	resumed, err := uc.ResumeTask(context.Background(), "task-1", "dispatcher-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, resumed.Status)
	assert.Nil(t, resumed.SuspendedFrom)

	require.Len(t, repo.transitions, 2)
	assert.Equal(t, domain.ActionTaskHeld, repo.transitions[0].Activity.Action)
	assert.Equal(t, domain.ActionTaskResumed, repo.transitions[1].Activity.Action)
}

func TestHoldTaskRejectsTerminalAndHeld(t *testing.T) {
	completed := preparedTask()
	completed.Status = domain.StatusCompleted
	uc := New(&fakeTaskRepo{task: completed}, Config{}, nil)

	_, err := uc.HoldTask(context.Background(), "task-1", "dispatcher-1", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))

	ready := domain.StatusReady
	held := preparedTask()
	held.Status = domain.StatusOnHold
	held.SuspendedFrom = &ready
	uc = New(&fakeTaskRepo{task: held}, Config{}, nil)

	_, err = uc.HoldTask(context.Background(), "task-1", "dispatcher-1", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))
}

func TestResumeTaskRequiresSuspensionMarker(t *testing.T) {
	task := preparedTask()
	task.Status = domain.StatusOnHold
	task.SuspendedFrom = nil
	uc := New(&fakeTaskRepo{task: task}, Config{}, nil)

	_, err := uc.ResumeTask(context.Background(), "task-1", "dispatcher-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))
}

func TestResumeTaskNotHeld(t *testing.T) {
	task := preparedTask()
	task.Status = domain.StatusReady
	uc := New(&fakeTaskRepo{task: task}, Config{}, nil)

	_, err := uc.ResumeTask(context.Background(), "task-1", "dispatcher-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))
}
