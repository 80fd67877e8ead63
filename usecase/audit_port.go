package usecase

import (
	"context"

	"github.com/namviet/fieldops/domain"
)

// AuditSink records best-effort activity entries. Implementations may
// spool records that cannot be written immediately; a nil error means
// the record was either persisted or durably queued. Check-in audits do
// NOT go through this sink: they are written atomically with the task
// transition by the repository.
type AuditSink interface {
	Record(ctx context.Context, activity *domain.Activity) error
}
