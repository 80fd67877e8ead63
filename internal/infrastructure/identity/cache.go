package identity

import (
	"context"
	"encoding/json"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/namviet/fieldops/domain"
	"github.com/namviet/fieldops/usecase"
)

// CachedProvider fronts an IdentityProvider with a Redis snapshot cache.
// Cache failures degrade to direct provider calls; they never fail the
// lookup themselves. DeleteUser invalidates the cached snapshot so the
// idempotent re-check after deletion sees the provider's 404.
type CachedProvider struct {
	inner  usecase.IdentityProvider
	client *redislib.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewCachedProvider wraps the given provider with a Redis cache.
func NewCachedProvider(inner usecase.IdentityProvider, client *redislib.Client, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{
		inner:  inner,
		client: client,
		ttl:    ttl,
		prefix: "identity:",
		logger: logger,
	}
}

func (p *CachedProvider) GetUser(ctx context.Context, id string) (*domain.IdentityRecord, error) {
	if p.client != nil {
		cached, err := p.client.Get(ctx, p.prefix+id).Result()
		if err == nil {
			var record domain.IdentityRecord
			if json.Unmarshal([]byte(cached), &record) == nil {
				return &record, nil
			}
		} else if err != redislib.Nil {
			p.logger.Warn("identity cache read failed", zap.Error(err))
		}
	}

	record, err := p.inner.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.client != nil {
		if payload, err := json.Marshal(record); err == nil {
			if err := p.client.Set(ctx, p.prefix+id, payload, p.ttl).Err(); err != nil {
				p.logger.Warn("identity cache write failed", zap.Error(err))
			}
		}
	}
	return record, nil
}

func (p *CachedProvider) DeleteUser(ctx context.Context, id string) error {
	err := p.inner.DeleteUser(ctx, id)
	if err == nil || domain.IsDomainError(err, domain.ErrCodeNotFound) {
		p.invalidate(ctx, id)
	}
	return err
}

func (p *CachedProvider) invalidate(ctx context.Context, id string) {
	if p.client == nil {
		return
	}
	if err := p.client.Del(ctx, p.prefix+id).Err(); err != nil {
		p.logger.Warn("identity cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}

var _ usecase.IdentityProvider = (*CachedProvider)(nil)
