package wizard

import (
	"context"

	"github.com/ppotepa/streamcraft-tts/internal/engine"
	"github.com/ppotepa/streamcraft-tts/internal/models"
)

// Engine is the processing backend surface the wizard consumes. The
// concrete implementation lives in internal/engine.
type Engine interface {
	CheckVod(ctx context.Context, vodURL string) (*models.VodMeta, error)
	RunAudio(ctx context.Context, req engine.AudioRequest) (*engine.AudioResult, error)
	RunSanitize(ctx context.Context, req engine.SanitizeRequest, onProgress engine.ProgressFunc, onLog engine.LogFunc) (*engine.SanitizeResult, error)
	RunSrt(ctx context.Context, vodURL string) (*engine.SrtResult, error)
	RunTrain(ctx context.Context, vodURL string) (*engine.TrainResult, error)
	RunTts(ctx context.Context, req engine.TtsRequest) (*engine.TtsResult, error)
	GetJobs(ctx context.Context) ([]models.Job, error)
	DeleteJob(ctx context.Context, jobID string) error
	ArtifactURL(ctx context.Context, path string) (string, error)
}
