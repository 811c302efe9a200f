package wizard

import (
	"context"

	"github.com/ppotepa/streamcraft-tts/internal/models"
)

type RedisRepository interface {
	CacheVodMeta(ctx context.Context, vodURL string, meta *models.VodMeta) error
	GetVodMeta(ctx context.Context, vodURL string) (*models.VodMeta, error)

	CacheJobList(ctx context.Context, jobs []models.Job) error
	GetJobList(ctx context.Context) ([]models.Job, error)
	InvalidateJobList(ctx context.Context) error
}
