package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

const (
	cacheGenerationKey = "issues:generation"
	cacheListPrefix    = "issues:list"
)

// cachedIssueRepository serves FindMany from Redis. Every successful write bumps a
// generation counter that is part of each list key, so entries written before the
// bump are never read again and simply expire.
type cachedIssueRepository struct {
	inner  IssueRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedIssueRepository decorates inner with a Redis list cache.
func NewCachedIssueRepository(inner IssueRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) IssueRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedIssueRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *cachedIssueRepository) Insert(ctx context.Context, issue *domain.Issue) error {
	if err := r.inner.Insert(ctx, issue); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedIssueRepository) FindMany(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	gen, err := r.client.Get(ctx, cacheGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn("issue cache unavailable", zap.Error(err))
		return r.inner.FindMany(ctx, filter)
	}

	key, err := listCacheKey(gen, filter)
	if err != nil {
		return r.inner.FindMany(ctx, filter)
	}

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var cached []domain.Issue
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		r.logger.Warn("discarding corrupt issue cache entry", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("issue cache read failed", zap.String("key", key), zap.Error(err))
	}

	issues, err := r.inner.FindMany(ctx, filter)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(issues); err == nil {
		if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			r.logger.Warn("issue cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return issues, nil
}

func (r *cachedIssueRepository) UpdateByID(ctx context.Context, id string, patch domain.IssuePatch, updatedOn time.Time) (*domain.Issue, error) {
	issue, err := r.inner.UpdateByID(ctx, id, patch, updatedOn)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return issue, nil
}

func (r *cachedIssueRepository) DeleteByID(ctx context.Context, id string) error {
	if err := r.inner.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *cachedIssueRepository) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

func (r *cachedIssueRepository) invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		r.logger.Warn("issue cache invalidation failed", zap.Error(err))
	}
}

// listCacheKey derives a stable key from the generation and the filter contents.
func listCacheKey(gen int64, filter IssueFilter) (string, error) {
	encoded, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return fmt.Sprintf("%s:%d:%s", cacheListPrefix, gen, hex.EncodeToString(sum[:12])), nil
}
