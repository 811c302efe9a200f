package wizard

import (
	"context"

	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/internal/progress"
	"github.com/ppotepa/streamcraft-tts/internal/review"
	"github.com/ppotepa/streamcraft-tts/pkg/utils"
)

// StepParams carries the per-step inputs a run needs beyond the job
// itself. Only tts uses Text.
type StepParams struct {
	Text string `json:"text"`
}

// SessionState is the live wizard state for the open job.
type SessionState struct {
	Job     *models.Job   `json:"job"`
	Steps   []models.Step `json:"steps"`
	Active  models.StepID `json:"active"`
	Running models.StepID `json:"running,omitempty"`
}

// ReviewState is the segment-review view returned after every review
// mutation.
type ReviewState struct {
	Phase        review.Phase        `json:"phase"`
	Segments     []models.Segment    `json:"segments"`
	CurrentIndex int                 `json:"current_index"`
	PlayToken    uint64              `json:"play_token"`
	Votes        map[int]models.Vote `json:"votes"`
	Autopilot    bool                `json:"autopilot"`
}

// ProgressView is an incremental progress read for UI polling.
type ProgressView struct {
	Overall int              `json:"overall"`
	Events  []progress.Event `json:"events"`
}

type UseCase interface {
	CheckVod(ctx context.Context, vodURL string) (*models.VodMeta, error)
	ListJobs(ctx context.Context, pagination *utils.Pagination) (*models.JobList, error)
	DeleteJob(ctx context.Context, jobID string) error

	OpenJob(ctx context.Context, jobID string, startStep *models.StepID) (*SessionState, error)
	Session() (*SessionState, error)
	StartStep(ctx context.Context, stepID models.StepID, params StepParams) (*SessionState, error)
	CancelStep(stepID models.StepID) error
	ProgressSince(seq int64) ProgressView

	OpenReview() (*ReviewState, error)
	ReviewAccept() (*ReviewState, error)
	ReviewReject() (*ReviewState, error)
	ReviewJump(idx int) (*ReviewState, error)
	ReviewKey(key string, textInputFocused bool) (*ReviewState, error)
	ReviewAutopilot(enabled bool) (*ReviewState, error)
	ApplyTranscript(index int, text string) bool
	CloseReview() (*review.Summary, error)

	AvatarURL(ctx context.Context, login string) (string, bool)
	ClearAvatarCache()
	ArtifactURL(ctx context.Context, path string) (string, error)
}
