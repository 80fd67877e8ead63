package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/repository"
	"github.com/namviet/fieldops/usecase"
)

// AuditBridge implements the best-effort audit sink: it appends directly
// to the activity log and falls back to the bbolt spool when the primary
// write fails. A spooled record counts as recorded.
type AuditBridge struct {
	activities repository.ActivityRepository
	processor  *SpoolProcessor
	logger     *zap.Logger
}

func NewAuditBridge(activities repository.ActivityRepository, processor *SpoolProcessor, logger *zap.Logger) *AuditBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditBridge{
		activities: activities,
		processor:  processor,
		logger:     logger,
	}
}

func (b *AuditBridge) Record(ctx context.Context, activity *domain.Activity) error {
	if activity == nil {
		return domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}

	err := b.activities.Append(ctx, activity)
	if err == nil {
		return nil
	}

	b.logger.Warn("direct audit append failed, spooling",
		zap.String("action", string(activity.Action)),
		zap.Error(err))

	if b.processor == nil {
		return err
	}
	if spoolErr := b.processor.Spool(activity); spoolErr != nil {
		b.logger.Error("audit spool enqueue failed", zap.Error(spoolErr))
		return spoolErr
	}
	return nil
}

var _ usecase.AuditSink = (*AuditBridge)(nil)
