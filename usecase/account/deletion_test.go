package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namviet/fieldops/domain"
)

type fakeProvider struct {
	record     *domain.IdentityRecord
	getErr     error
	deleteErr  error
	getCalls   int
	delCalls   int
	deletedIDs []string
}

func (f *fakeProvider) GetUser(ctx context.Context, id string) (*domain.IdentityRecord, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeProvider) DeleteUser(ctx context.Context, id string) error {
	f.delCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type fakeAuditSink struct {
	recorded []*domain.Activity
	err      error
}

func (f *fakeAuditSink) Record(ctx context.Context, activity *domain.Activity) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, activity)
	return nil
}

func (f *fakeAuditSink) actions() []domain.ActivityAction {
	var actions []domain.ActivityAction
	for _, a := range f.recorded {
		actions = append(actions, a.Action)
	}
	return actions
}

func TestDeleteAccount(t *testing.T) {
	provider := &fakeProvider{
		record: &domain.IdentityRecord{ID: "u-1", Email: "tech@namviet.vn", Name: "Tech", Role: "worker"},
	}
	audit := &fakeAuditSink{}
	svc := New(provider, audit, nil)

	result, err := svc.DeleteAccount(context.Background(), "u-1", "u-1")
	require.NoError(t, err)
	assert.False(t, result.AlreadyDeleted)

	assert.Equal(t, []string{"u-1"}, provider.deletedIDs)
	assert.Equal(t, []domain.ActivityAction{
		domain.ActionAccountDeletionInitiated,
		domain.ActionAccountDeletionCompleted,
	}, audit.actions())
	for _, activity := range audit.recorded {
		assert.Equal(t, domain.TopicAccount, activity.Topic)
		assert.Equal(t, "u-1", activity.UserID)
	}
}

func TestDeleteAccountIdempotentRetry(t *testing.T) {
	provider := &fakeProvider{getErr: domain.ErrIdentityNotFound}
	audit := &fakeAuditSink{}
	svc := New(provider, audit, nil)

	result, err := svc.DeleteAccount(context.Background(), "u-1", "u-1")
	require.NoError(t, err)
	assert.True(t, result.AlreadyDeleted)

	assert.Zero(t, provider.delCalls)
	assert.Equal(t, []domain.ActivityAction{domain.ActionAccountDeletionAlreadyDeleted}, audit.actions())
}

func TestDeleteAccountRaceWithProviderDelete(t *testing.T) {
	provider := &fakeProvider{
		record:    &domain.IdentityRecord{ID: "u-1"},
		deleteErr: domain.ErrIdentityNotFound,
	}
	audit := &fakeAuditSink{}
	svc := New(provider, audit, nil)

	result, err := svc.DeleteAccount(context.Background(), "u-1", "u-1")
	require.NoError(t, err)
	assert.True(t, result.AlreadyDeleted)
	assert.Equal(t, []domain.ActivityAction{
		domain.ActionAccountDeletionInitiated,
		domain.ActionAccountDeletionAlreadyDeleted,
	}, audit.actions())
}

func TestDeleteAccountProviderFailure(t *testing.T) {
	provider := &fakeProvider{
		record:    &domain.IdentityRecord{ID: "u-1"},
		deleteErr: domain.WrapError(domain.ErrCodeProvider, "identity provider unavailable", errors.New("503")),
	}
	audit := &fakeAuditSink{}
	svc := New(provider, audit, nil)

	_, err := svc.DeleteAccount(context.Background(), "u-1", "u-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeProvider))
	assert.Equal(t, []domain.ActivityAction{
		domain.ActionAccountDeletionInitiated,
		domain.ActionAccountDeletionFailed,
	}, audit.actions())
}

func TestDeleteAccountAuditFailureDoesNotBlock(t *testing.T) {
	provider := &fakeProvider{record: &domain.IdentityRecord{ID: "u-1"}}
	audit := &fakeAuditSink{err: errors.New("activity log down")}
	svc := New(provider, audit, nil)

	result, err := svc.DeleteAccount(context.Background(), "u-1", "u-1")
	require.NoError(t, err)
	assert.False(t, result.AlreadyDeleted)
	assert.Equal(t, []string{"u-1"}, provider.deletedIDs)
}

func TestDeleteAccountSelfServiceOnly(t *testing.T) {
	provider := &fakeProvider{record: &domain.IdentityRecord{ID: "u-1"}}
	svc := New(provider, &fakeAuditSink{}, nil)

	_, err := svc.DeleteAccount(context.Background(), "u-1", "admin-1")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
	assert.Zero(t, provider.getCalls)
	assert.Zero(t, provider.delCalls)

	_, err = svc.DeleteAccount(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnauthorized))
}
