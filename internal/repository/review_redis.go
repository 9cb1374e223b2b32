package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/finsight/fraudlens/internal/models"
)

const (
	redisReviewKeyPrefix = "fraudlens:review:"
	redisReviewIndexKey  = "fraudlens:reviews"
)

// RedisReviewRepository stores each review as a JSON value and keeps an id
// list for insertion ordering.
type RedisReviewRepository struct {
	client *redis.Client
}

// NewRedisReviewRepository constructs the repository.
func NewRedisReviewRepository(client *redis.Client) *RedisReviewRepository {
	return &RedisReviewRepository{client: client}
}

func reviewKey(id string) string {
	return redisReviewKeyPrefix + id
}

// Create stores the record and appends its id to the ordering index.
func (r *RedisReviewRepository) Create(ctx context.Context, record *models.ReviewRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, reviewKey(record.ID), payload, 0)
	pipe.RPush(ctx, redisReviewIndexKey, record.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store review: %w", err)
	}
	return nil
}

// List returns reviews in insertion order, optionally filtered by status.
func (r *RedisReviewRepository) List(ctx context.Context, status *models.ReviewStatus) ([]models.ReviewRecord, error) {
	var ids []string
	err := withReadRetry(ctx, func() error {
		var err error
		ids, err = r.client.LRange(ctx, redisReviewIndexKey, 0, -1).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list review ids: %w", err)
	}
	if len(ids) == 0 {
		return []models.ReviewRecord{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = reviewKey(id)
	}
	var values []interface{}
	err = withReadRetry(ctx, func() error {
		var err error
		values, err = r.client.MGet(ctx, keys...).Result()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	records := make([]models.ReviewRecord, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}
		var record models.ReviewRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("unmarshal review: %w", err)
		}
		if status != nil && record.Status != *status {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// FindByID fetches a single review.
func (r *RedisReviewRepository) FindByID(ctx context.Context, id string) (*models.ReviewRecord, error) {
	var raw string
	err := withReadRetry(ctx, func() error {
		var err error
		raw, err = r.client.Get(ctx, reviewKey(id)).Result()
		if errors.Is(err, redis.Nil) {
			return ErrReviewNotFound
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	var record models.ReviewRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}
	return &record, nil
}

// Update rewrites an existing record in place. The ordering index is
// untouched so list order stays stable across decisions.
func (r *RedisReviewRepository) Update(ctx context.Context, record *models.ReviewRecord) error {
	exists, err := r.client.Exists(ctx, reviewKey(record.ID)).Result()
	if err != nil {
		return fmt.Errorf("check review: %w", err)
	}
	if exists == 0 {
		return ErrReviewNotFound
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	if err := r.client.Set(ctx, reviewKey(record.ID), payload, 0).Err(); err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}
