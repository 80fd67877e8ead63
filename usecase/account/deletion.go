package account

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/usecase"
)

// Result reports the outcome of a deletion request. AlreadyDeleted marks
// the idempotent retry path: the identity was gone before the call, which
// the caller should treat as success.
type Result struct {
	AlreadyDeleted bool `json:"already_deleted,omitempty"`
}

// Service removes a user's authentication identity while leaving every
// task, activity, and payment row that references the user id untouched.
// Those ids become orphaned weak references by design; the UI resolves
// them to a "[deleted user]" placeholder.
type Service struct {
	provider usecase.IdentityProvider
	audit    usecase.AuditSink
	logger   *zap.Logger
}

func New(provider usecase.IdentityProvider, audit usecase.AuditSink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		audit:    audit,
		logger:   logger,
	}
}

// DeleteAccount is self-service only: requestingUserID must equal userID.
//
// The provider delete call is the single irreversible step and the source
// of truth. The surrounding audit appends are best-effort side channels:
// their failure is logged but never changes the reported outcome, and a
// failed deletion stays failed regardless of what was audited. Retrying
// is always safe: step one either re-finds the still-extant account or
// short-circuits through the already-deleted path.
func (s *Service) DeleteAccount(ctx context.Context, userID, requestingUserID string) (*Result, error) {
	if userID == "" || requestingUserID != userID {
		return nil, domain.ErrUnauthorized
	}

	snapshot, err := s.provider.GetUser(ctx, userID)
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		s.record(ctx, userID, domain.ActionAccountDeletionAlreadyDeleted, map[string]string{
			"user_id": userID,
		})
		return &Result{AlreadyDeleted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, domain.ActionAccountDeletionInitiated, map[string]string{
		"user_id": snapshot.ID,
		"email":   snapshot.Email,
		"name":    snapshot.Name,
		"role":    snapshot.Role,
	})

	if err := s.provider.DeleteUser(ctx, userID); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			// Deleted between snapshot and delete; still idempotent.
			s.record(ctx, userID, domain.ActionAccountDeletionAlreadyDeleted, map[string]string{
				"user_id": userID,
			})
			return &Result{AlreadyDeleted: true}, nil
		}
		s.record(ctx, userID, domain.ActionAccountDeletionFailed, map[string]string{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.record(ctx, userID, domain.ActionAccountDeletionCompleted, map[string]string{
		"user_id": userID,
		"email":   snapshot.Email,
	})
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return &Result{}, nil
}

// record appends a best-effort audit entry. Failures are demoted to a
// warning: the provider call, not the audit log, decides the outcome.
func (s *Service) record(ctx context.Context, userID string, action domain.ActivityAction, payload map[string]string) {
	if s.audit == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to encode deletion audit payload", zap.Error(err))
		return
	}
	activity := &domain.Activity{
		UserID:  userID,
		Topic:   domain.TopicAccount,
		Action:  action,
		Payload: raw,
	}
	if err := s.audit.Record(ctx, activity); err != nil {
		s.logger.Warn("failed to record deletion audit entry",
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
