package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/internal/wizard"
)

type wizardRedisRepo struct {
	redisClient *redis.Client
	cfg         *config.Config
}

func NewWizardRedisRepo(redisClient *redis.Client, cfg *config.Config) wizard.RedisRepository {
	return &wizardRedisRepo{
		redisClient: redisClient,
		cfg:         cfg,
	}
}

func (w *wizardRedisRepo) vodKey(vodURL string) string {
	return w.cfg.Redis.VodCachePrefix + vodURL
}

func (w *wizardRedisRepo) CacheVodMeta(ctx context.Context, vodURL string, meta *models.VodMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal vod metadata: %w", err)
	}
	ttl := time.Duration(w.cfg.Redis.VodCacheTTL) * time.Second
	if err := w.redisClient.Set(ctx, w.vodKey(vodURL), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache vod metadata: %w", err)
	}
	return nil
}

func (w *wizardRedisRepo) GetVodMeta(ctx context.Context, vodURL string) (*models.VodMeta, error) {
	data, err := w.redisClient.Get(ctx, w.vodKey(vodURL)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vod metadata: %w", err)
	}
	meta := &models.VodMeta{}
	if err := json.Unmarshal(data, meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vod metadata: %w", err)
	}
	return meta, nil
}

func (w *wizardRedisRepo) CacheJobList(ctx context.Context, jobs []models.Job) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("failed to marshal job list: %w", err)
	}
	ttl := time.Duration(w.cfg.Redis.JobListTTL) * time.Second
	if err := w.redisClient.Set(ctx, w.cfg.Redis.JobListKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache job list: %w", err)
	}
	return nil
}

func (w *wizardRedisRepo) GetJobList(ctx context.Context) ([]models.Job, error) {
	data, err := w.redisClient.Get(ctx, w.cfg.Redis.JobListKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job list: %w", err)
	}
	var jobs []models.Job
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job list: %w", err)
	}
	return jobs, nil
}

func (w *wizardRedisRepo) InvalidateJobList(ctx context.Context) error {
	if err := w.redisClient.Del(ctx, w.cfg.Redis.JobListKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate job list: %w", err)
	}
	return nil
}
