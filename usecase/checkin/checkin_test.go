package checkin

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/pkg/geo"
	"github.com/namviet/fieldops/repository"
)

const (
	siteLat = 10.7731
	siteLng = 106.7020
)

// fakeTaskRepo applies transitions against an in-memory task the same way
// the conditional UPDATE does: the edge only wins if From still matches.
type fakeTaskRepo struct {
	mu            sync.Mutex
	task          *domain.Task
	transitions   []repository.TransitionParams
	transitionErr error
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
	return task, nil
}

func (f *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	return nil
}

func (f *fakeTaskRepo) Transition(ctx context.Context, params repository.TransitionParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transitionErr != nil {
		return f.transitionErr
	}
	if f.task == nil || f.task.ID != params.TaskID {
		return domain.ErrTaskNotFound
	}
	if f.task.Status != params.From {
		return domain.NewInvalidTransition(f.task.Status, params.To)
	}
	f.task.Status = params.To
	f.task.SuspendedFrom = params.SuspendedFrom
	if params.StartedAt != nil {
		f.task.StartedAt = params.StartedAt
	}
	if params.CompletedAt != nil {
		f.task.CompletedAt = params.CompletedAt
	}
	f.transitions = append(f.transitions, params)
	return nil
}

type fakeLocationRepo struct {
	location *domain.GeoLocation
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, id string) (*domain.GeoLocation, error) {
	if f.location == nil || f.location.ID != id {
		return nil, domain.ErrLocationNotFound
	}
	return f.location, nil
}

func (f *fakeLocationRepo) List(ctx context.Context, limit, offset int) ([]domain.GeoLocation, error) {
	return nil, nil
}

func (f *fakeLocationRepo) Create(ctx context.Context, location *domain.GeoLocation) (*domain.GeoLocation, error) {
	return location, nil
}

type fakeIdentityProvider struct {
	records map[string]*domain.IdentityRecord
	err     error
}

func (f *fakeIdentityProvider) GetUser(ctx context.Context, id string) (*domain.IdentityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[id]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return record, nil
}

func (f *fakeIdentityProvider) DeleteUser(ctx context.Context, id string) error {
	return nil
}

func newFixture(status domain.TaskStatus) (*Service, *fakeTaskRepo) {
	locationID := "loc-1"
	tasks := &fakeTaskRepo{
		task: &domain.Task{
			ID:          "task-1",
			Title:       "Install router",
			Status:      status,
			LocationID:  &locationID,
			AssigneeIDs: []string{"worker-1"},
		},
	}
	locations := &fakeLocationRepo{
		location: &domain.GeoLocation{
			ID:        locationID,
			Name:      "Customer site",
			Latitude:  siteLat,
			Longitude: siteLng,
		},
	}
	identities := &fakeIdentityProvider{
		records: map[string]*domain.IdentityRecord{
			"worker-1": {ID: "worker-1"},
			"demo-1":   {ID: "demo-1", Demo: true},
		},
	}
	svc := New(tasks, locations, identities, geo.Policy{AcceptRadiusMeters: 100, WarnRadiusMeters: 250}, nil)
	return svc, tasks
}

func decodePayload(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload
}

func TestCheckInWithinAcceptRadius(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)

	result, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat + 0.0008, // about 89m north
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Empty(t, result.Warning)
	assert.False(t, result.Bypassed)
	assert.InDelta(t, 89, result.DistanceMeters, 2)
	assert.Equal(t, domain.StatusInProgress, result.NewStatus)

	assert.Equal(t, domain.StatusInProgress, tasks.task.Status)
	require.NotNil(t, tasks.task.StartedAt)

	require.Len(t, tasks.transitions, 1)
	params := tasks.transitions[0]
	assert.Equal(t, domain.StatusReady, params.From)
	require.NotNil(t, params.Activity)
	assert.Equal(t, domain.ActionTaskCheckedIn, params.Activity.Action)
	assert.Equal(t, domain.TopicTask, params.Activity.Topic)
	assert.Equal(t, "worker-1", params.Activity.UserID)
}

func TestCheckInWarningBand(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)

	result, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat + 0.00135, // about 150m north
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.NotEmpty(t, result.Warning)
	assert.InDelta(t, 150, result.DistanceMeters, 2)
	assert.Equal(t, domain.StatusInProgress, tasks.task.Status)

	require.Len(t, tasks.transitions, 1)
	payload := decodePayload(t, tasks.transitions[0].Activity.Payload)
	assert.NotEmpty(t, payload["warning"])
}

func TestCheckInRejectedBeyondRadius(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)

	result, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat + 0.0045, // about 500m north
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeLocationRejected))

	require.NotNil(t, result)
	assert.False(t, result.Accepted)
	assert.InDelta(t, 500, result.DistanceMeters, 3)

	// Nothing mutated, nothing audited.
	assert.Equal(t, domain.StatusReady, tasks.task.Status)
	assert.Nil(t, tasks.task.StartedAt)
	assert.Empty(t, tasks.transitions)
}

func TestCheckInDemoBypass(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)

	// Demo account reporting from the other side of the planet, not even
	// on the assignee list.
	result, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "demo-1",
		Latitude:     -siteLat,
		Longitude:    siteLng - 180,
		Direction:    DirectionCheckIn,
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.True(t, result.Bypassed)
	assert.Equal(t, domain.StatusInProgress, tasks.task.Status)

	require.Len(t, tasks.transitions, 1)
	payload := decodePayload(t, tasks.transitions[0].Activity.Payload)
	assert.Equal(t, true, payload["demo_bypass"])
}

func TestCheckInNonAssigneeRejected(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)

	_, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "stranger",
		Latitude:     siteLat,
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Empty(t, tasks.transitions)
}

func TestCheckInProviderOutageDoesNotBypass(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)
	svc.identities = &fakeIdentityProvider{err: domain.WrapError(domain.ErrCodeProvider, "identity provider unavailable", errors.New("timeout"))}

	// The assignee can still check in on a provider outage, but the
	// position must pass verification.
	_, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat + 0.0045,
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeLocationRejected))
	assert.Empty(t, tasks.transitions)
}

func TestCheckInWrongState(t *testing.T) {
	svc, _ := newFixture(domain.StatusPreparing)

	_, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat,
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalidTransition))
}

func TestCheckInLocationAgnosticTask(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)
	tasks.task.LocationID = nil

	result, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     0,
		Longitude:    0,
		Direction:    DirectionCheckIn,
	})
	require.NoError(t, err)

	assert.True(t, result.Accepted)
	assert.Zero(t, result.DistanceMeters)

	require.Len(t, tasks.transitions, 1)
	payload := decodePayload(t, tasks.transitions[0].Activity.Payload)
	assert.Equal(t, true, payload["no_target_site"])
}

func TestCheckOutRecordsPayment(t *testing.T) {
	svc, tasks := newFixture(domain.StatusInProgress)

	result, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat,
		Longitude:    siteLng,
		Direction:    DirectionCheckOut,
		Payment: &domain.Payment{
			Amount:   1500000,
			Currency: "VND",
			Note:     "cash on completion",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, result.NewStatus)
	assert.Equal(t, domain.StatusCompleted, tasks.task.Status)
	require.NotNil(t, tasks.task.CompletedAt)

	require.Len(t, tasks.transitions, 1)
	params := tasks.transitions[0]
	assert.Equal(t, domain.ActionTaskCompleted, params.Activity.Action)
	require.NotNil(t, params.Payment)
	assert.Equal(t, "task-1", params.Payment.TaskID)
	assert.Equal(t, "worker-1", params.Payment.CollectedBy)
	assert.Equal(t, int64(1500000), params.Payment.Amount)
	assert.False(t, params.Payment.CollectedAt.IsZero())
}

func TestCheckInAtomicAuditFailure(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)
	tasks.transitionErr = errors.New("activity insert failed")

	_, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat,
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.Error(t, err)

	// The transition and its audit record commit together or not at all.
	assert.Equal(t, domain.StatusReady, tasks.task.Status)
	assert.Nil(t, tasks.task.StartedAt)
}

func TestConcurrentCheckInSingleWinner(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)
	tasks.task.AssigneeIDs = []string{"worker-1", "worker-2"}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, userID := range []string{"worker-1", "worker-2"} {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = svc.VerifyAndRecord(context.Background(), Request{
				TaskID:       "task-1",
				ActingUserID: userID,
				Latitude:     siteLat,
				Longitude:    siteLng,
				Direction:    DirectionCheckIn,
			})
		}(i, userID)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case domain.IsDomainError(err, domain.ErrCodeInvalidTransition):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Len(t, tasks.transitions, 1)
	assert.Equal(t, domain.StatusInProgress, tasks.task.Status)
}

func TestCheckInStampsStartedAtOnce(t *testing.T) {
	svc, tasks := newFixture(domain.StatusReady)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.VerifyAndRecord(context.Background(), Request{
		TaskID:       "task-1",
		ActingUserID: "worker-1",
		Latitude:     siteLat,
		Longitude:    siteLng,
		Direction:    DirectionCheckIn,
	})
	require.NoError(t, err)

	require.Len(t, tasks.transitions, 1)
	require.NotNil(t, tasks.transitions[0].StartedAt)
	assert.Equal(t, fixed, *tasks.transitions[0].StartedAt)
	assert.Nil(t, tasks.transitions[0].CompletedAt)
}
