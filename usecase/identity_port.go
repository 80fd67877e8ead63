package usecase

import (
	"context"

	"github.com/namviet/fieldops/domain"
)

// IdentityProvider abstracts the external identity service. GetUser must
// return domain.ErrIdentityNotFound (wrapped or direct) when the account
// no longer exists, so callers can distinguish "gone" from "unreachable";
// transient failures carry domain.ErrCodeProvider.
type IdentityProvider interface {
	GetUser(ctx context.Context, id string) (*domain.IdentityRecord, error)
	DeleteUser(ctx context.Context, id string) error
}
