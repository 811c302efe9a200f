package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppotepa/streamcraft-tts/internal/cache"
	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/engine"
	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/internal/pipeline"
	"github.com/ppotepa/streamcraft-tts/internal/progress"
	"github.com/ppotepa/streamcraft-tts/internal/review"
	"github.com/ppotepa/streamcraft-tts/internal/wizard"
	"github.com/ppotepa/streamcraft-tts/pkg/logger"
	"github.com/ppotepa/streamcraft-tts/pkg/utils"
)

const feedCapacity = 1000

type wizardUC struct {
	cfg          *config.Config
	engine       wizard.Engine
	redisRepo    wizard.RedisRepository
	artifactRepo wizard.ArtifactRepository
	avatars      *cache.AvatarCache
	feed         *progress.Feed
	logger       logger.Logger

	mu       sync.Mutex
	store    *pipeline.Store
	machine  *review.Machine
	segments []models.Segment
}

func NewWizardUseCase(
	cfg *config.Config,
	eng wizard.Engine,
	redisRepo wizard.RedisRepository,
	artifactRepo wizard.ArtifactRepository,
	log logger.Logger,
) wizard.UseCase {
	return &wizardUC{
		cfg:          cfg,
		engine:       eng,
		redisRepo:    redisRepo,
		artifactRepo: artifactRepo,
		avatars:      cache.NewAvatarCache(cfg.Pipeline.AvatarCDN),
		feed:         progress.NewFeed(feedCapacity),
		logger:       log,
	}
}

func (w *wizardUC) CheckVod(ctx context.Context, vodURL string) (*models.VodMeta, error) {
	input := engine.CheckVodRequest{VodURL: vodURL}
	if err := utils.ValidateStruct(ctx, &input); err != nil {
		w.logger.Errorf("CheckVod - ValidateStruct error: %v", err)
		return nil, fmt.Errorf("invalid vod url: %v", err)
	}

	if w.redisRepo != nil {
		if meta, err := w.redisRepo.GetVodMeta(ctx, vodURL); err == nil && meta != nil {
			return meta, nil
		}
	}

	meta, err := w.engine.CheckVod(ctx, vodURL)
	if err != nil {
		w.logger.Errorf("CheckVod - engine error: %v", err)
		return nil, err
	}

	if w.redisRepo != nil {
		if err := w.redisRepo.CacheVodMeta(ctx, vodURL, meta); err != nil {
			w.logger.Warnf("CheckVod - failed to cache metadata: %v", err)
		}
	}
	return meta, nil
}

func (w *wizardUC) ListJobs(ctx context.Context, pagination *utils.Pagination) (*models.JobList, error) {
	if pagination == nil {
		pagination = &utils.Pagination{}
	}
	pagination.Normalize()

	var jobs []models.Job
	if w.redisRepo != nil {
		if cached, err := w.redisRepo.GetJobList(ctx); err == nil && cached != nil {
			jobs = cached
		}
	}
	if jobs == nil {
		fetched, err := w.engine.GetJobs(ctx)
		if err != nil {
			w.logger.Errorf("ListJobs - engine error: %v", err)
			return nil, fmt.Errorf("failed to fetch jobs: %v", err)
		}
		jobs = fetched
		if w.redisRepo != nil {
			if err := w.redisRepo.CacheJobList(ctx, jobs); err != nil {
				w.logger.Warnf("ListJobs - failed to cache job list: %v", err)
			}
		}
	}

	total := len(jobs)
	start := pagination.GetOffset()
	if start > total {
		start = total
	}
	end := start + pagination.GetLimit()
	if end > total {
		end = total
	}

	return &models.JobList{
		TotalCount: total,
		Page:       pagination.Page,
		Size:       pagination.Size,
		HasMore:    utils.GetHasMore(pagination.Page, total, pagination.Size),
		Jobs:       jobs[start:end],
	}, nil
}

func (w *wizardUC) DeleteJob(ctx context.Context, jobID string) error {
	if err := w.engine.DeleteJob(ctx, jobID); err != nil {
		w.logger.Errorf("DeleteJob - engine error: %v", err)
		return fmt.Errorf("failed to delete job: %v", err)
	}
	if w.redisRepo != nil {
		if err := w.redisRepo.InvalidateJobList(ctx); err != nil {
			w.logger.Warnf("DeleteJob - failed to invalidate job cache: %v", err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.store != nil && w.store.Job() != nil && w.store.Job().JobID == jobID {
		w.store = nil
		w.machine = nil
		w.segments = nil
	}
	return nil
}

func (w *wizardUC) OpenJob(ctx context.Context, jobID string, startStep *models.StepID) (*wizard.SessionState, error) {
	jobs, err := w.engine.GetJobs(ctx)
	if err != nil {
		w.logger.Errorf("OpenJob - engine error: %v", err)
		return nil, fmt.Errorf("failed to fetch jobs: %v", err)
	}

	var job *models.Job
	for i := range jobs {
		if jobs[i].JobID == jobID {
			job = &jobs[i]
			break
		}
	}
	if job == nil {
		return nil, wizard.ErrJobNotFound
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.store = pipeline.NewStore(job, startStep)
	w.machine = nil
	w.segments = nil
	return w.sessionLocked(), nil
}

func (w *wizardUC) Session() (*wizard.SessionState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.store == nil {
		return nil, wizard.ErrNoOpenJob
	}
	return w.sessionLocked(), nil
}

func (w *wizardUC) sessionLocked() *wizard.SessionState {
	return &wizard.SessionState{
		Job:     w.store.Job(),
		Steps:   w.store.Steps(),
		Active:  w.store.ActiveStep(),
		Running: w.store.RunningStep(),
	}
}

// StartStep begins a run of the given step and dispatches the matching
// engine call in the background. The review step has no engine call; it
// opens the local review session instead.
func (w *wizardUC) StartStep(ctx context.Context, stepID models.StepID, params wizard.StepParams) (*wizard.SessionState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.store == nil {
		return nil, wizard.ErrNoOpenJob
	}
	if stepID == models.StepReview {
		if _, err := w.openReviewLocked(); err != nil {
			return nil, err
		}
		return w.sessionLocked(), nil
	}

	generation, err := w.store.StartStep(stepID)
	if err != nil {
		return nil, err
	}
	w.feed.BeginRun(stepID, generation, w.stepWeights(stepID))

	job := w.store.Job()
	go w.runStep(w.store, stepID, generation, job, params)
	return w.sessionLocked(), nil
}

func (w *wizardUC) stepWeights(stepID models.StepID) progress.Weights {
	if stepID == models.StepSanitize {
		return progress.SanitizeWeights(w.cfg.Pipeline.ExtractVocals)
	}
	return progress.Weights{progress.StageRun: 1.0}
}

// runStep executes one engine call and settles the step. It is detached
// from the request context: the run outlives the HTTP call that started
// it, and a run superseded in the meantime settles into ErrStaleGeneration,
// which is logged and dropped.
func (w *wizardUC) runStep(store *pipeline.Store, stepID models.StepID, generation string, job *models.Job, params wizard.StepParams) {
	ctx := context.Background()

	outputs, message, err := w.dispatchStep(ctx, store, stepID, generation, job, params)
	if err != nil {
		w.logger.Errorf("step %s failed: %v", stepID, err)
		if ferr := store.FailStep(stepID, generation, err.Error()); ferr != nil {
			w.logger.Warnf("step %s failure dropped: %v", stepID, ferr)
		}
		return
	}

	w.feed.Publish(progress.Event{
		Generation: generation,
		Kind:       progress.EventKindProgress,
		Stage:      progress.StageRun,
		Value:      100,
	})
	if cerr := store.CompleteStep(stepID, generation, outputs, message); cerr != nil {
		w.logger.Warnf("step %s completion dropped: %v", stepID, cerr)
	}
}

func (w *wizardUC) dispatchStep(ctx context.Context, store *pipeline.Store, stepID models.StepID, generation string, job *models.Job, params wizard.StepParams) ([]models.StepOutput, string, error) {
	switch stepID {
	case models.StepVod:
		result, err := w.engine.RunAudio(ctx, engine.AudioRequest{
			VodURL:  job.VodURL,
			Quality: w.cfg.Pipeline.AudioQuality,
		})
		if err != nil {
			return nil, "", err
		}
		w.publishLog(generation, result.Log)
		_ = store.SetOutput(generation, models.OutputAudioPath, result.Path)
		return []models.StepOutput{{Label: "audio", Path: result.Path}}, "audio extracted", nil

	case models.StepSanitize:
		result, err := w.engine.RunSanitize(ctx, w.sanitizeRequest(job), w.onProgress(generation), w.onLog(generation))
		if err != nil {
			return nil, "", err
		}
		_ = store.SetOutput(generation, models.OutputSanitizePath, result.CleanPath)
		_ = store.SetOutput(generation, models.OutputSegmentsPath, result.SegmentsPath)

		w.mu.Lock()
		if w.store == store {
			w.segments = result.PreviewSegments
		}
		w.mu.Unlock()
		if len(result.PreviewSegments) > 0 {
			_ = store.SetPreview(models.StepSanitize, true)
		}
		outputs := []models.StepOutput{
			{Label: "clean audio", Path: result.CleanPath},
			{Label: "segments", Path: result.SegmentsPath},
		}
		return outputs, fmt.Sprintf("%d segments detected", result.Segments), nil

	case models.StepSrt:
		result, err := w.engine.RunSrt(ctx, job.VodURL)
		if err != nil {
			return nil, "", err
		}
		w.publishLog(generation, result.Log)
		_ = store.SetOutput(generation, models.OutputSrtPath, result.Path)
		message := fmt.Sprintf("%d lines transcribed", result.Lines)
		return []models.StepOutput{{Label: "subtitles", Path: result.Path}}, message, nil

	case models.StepTrain:
		result, err := w.engine.RunTrain(ctx, job.VodURL)
		if err != nil {
			return nil, "", err
		}
		w.publishLog(generation, result.Log)
		_ = store.SetOutput(generation, models.OutputDatasetPath, result.DatasetPath)
		_ = store.SetOutput(generation, models.OutputClipsDir, result.ClipsDir)
		_ = store.SetOutput(generation, models.OutputManifestPath, result.ManifestPath)
		outputs := []models.StepOutput{
			{Label: "dataset", Path: result.DatasetPath},
			{Label: "clips", Path: result.ClipsDir},
			{Label: "manifest", Path: result.ManifestPath},
		}
		return outputs, "voice dataset built", nil

	case models.StepTts:
		result, err := w.engine.RunTts(ctx, engine.TtsRequest{
			VodURL:   job.VodURL,
			Text:     params.Text,
			Streamer: job.Streamer,
		})
		if err != nil {
			return nil, "", err
		}
		w.publishLog(generation, result.Log)
		_ = store.SetOutput(generation, models.OutputTtsPath, result.OutputPath)
		return []models.StepOutput{{Label: "speech", Path: result.OutputPath}}, "speech synthesized", nil
	}
	return nil, "", pipeline.ErrUnknownStep
}

func (w *wizardUC) sanitizeRequest(job *models.Job) engine.SanitizeRequest {
	p := w.cfg.Pipeline
	return engine.SanitizeRequest{
		VodURL:        job.VodURL,
		Mode:          p.SanitizeMode,
		Preset:        p.SanitizePreset,
		Strictness:    p.Strictness,
		ExtractVocals: p.ExtractVocals,
		UvrModel:      p.UvrModel,
		UvrPrecision:  p.UvrPrecision,
		Preview:       engine.PreviewParams{Count: 12, Seconds: 6},
		VoiceSamples:  engine.VoiceSampleParams{Count: 3, MinSeconds: 4, MaxSeconds: 10},
		Normalization: engine.NormalizationParams{Enabled: true, TargetDb: -23},
		Stream:        true,
	}
}

func (w *wizardUC) onProgress(generation string) engine.ProgressFunc {
	return func(stage string, value float64) {
		w.feed.Publish(progress.Event{
			Generation: generation,
			Kind:       progress.EventKindProgress,
			Stage:      progress.Stage(stage),
			Value:      value,
		})
	}
}

func (w *wizardUC) onLog(generation string) engine.LogFunc {
	return func(line string) {
		w.feed.Publish(progress.Event{
			Generation: generation,
			Kind:       progress.EventKindLog,
			Line:       line,
		})
	}
}

func (w *wizardUC) publishLog(generation string, lines []string) {
	for _, line := range lines {
		w.feed.Publish(progress.Event{
			Generation: generation,
			Kind:       progress.EventKindLog,
			Line:       line,
		})
	}
}

func (w *wizardUC) CancelStep(stepID models.StepID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.store == nil {
		return wizard.ErrNoOpenJob
	}
	return w.store.CancelStep(stepID)
}

func (w *wizardUC) ProgressSince(seq int64) wizard.ProgressView {
	return wizard.ProgressView{
		Overall: w.feed.Overall(),
		Events:  w.feed.Since(seq),
	}
}

func (w *wizardUC) OpenReview() (*wizard.ReviewState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.openReviewLocked()
}

func (w *wizardUC) openReviewLocked() (*wizard.ReviewState, error) {
	if w.store == nil {
		return nil, wizard.ErrNoOpenJob
	}
	if w.machine != nil && w.machine.Phase() == review.PhaseReviewing {
		return w.reviewStateLocked(), nil
	}
	if len(w.segments) == 0 {
		return nil, wizard.ErrNoSegments
	}
	if w.store.RunningStep() != models.StepReview {
		if _, err := w.store.StartStep(models.StepReview); err != nil {
			return nil, err
		}
	}
	w.machine = review.NewMachine(w.segments)
	return w.reviewStateLocked(), nil
}

func (w *wizardUC) reviewStateLocked() *wizard.ReviewState {
	return &wizard.ReviewState{
		Phase:        w.machine.Phase(),
		Segments:     w.machine.Segments(),
		CurrentIndex: w.machine.CurrentIndex(),
		PlayToken:    w.machine.PlayToken(),
		Votes:        w.machine.Votes(),
		Autopilot:    w.machine.Autopilot(),
	}
}

func (w *wizardUC) withReview(fn func(m *review.Machine) error) (*wizard.ReviewState, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.machine == nil {
		return nil, wizard.ErrNoReviewSession
	}
	if err := fn(w.machine); err != nil {
		return nil, err
	}
	return w.reviewStateLocked(), nil
}

func (w *wizardUC) ReviewAccept() (*wizard.ReviewState, error) {
	return w.withReview(func(m *review.Machine) error { return m.Accept() })
}

func (w *wizardUC) ReviewReject() (*wizard.ReviewState, error) {
	return w.withReview(func(m *review.Machine) error { return m.Reject() })
}

func (w *wizardUC) ReviewJump(idx int) (*wizard.ReviewState, error) {
	return w.withReview(func(m *review.Machine) error { return m.JumpTo(idx) })
}

// ReviewKey routes a forwarded keyboard event. Escape closes through
// CloseReview so the vote ledger lands on the job state store; other keys
// go straight to the machine.
func (w *wizardUC) ReviewKey(key string, textInputFocused bool) (*wizard.ReviewState, error) {
	if key == review.KeyEscape && !textInputFocused {
		if _, err := w.CloseReview(); err != nil {
			return nil, err
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.machine == nil {
			return nil, wizard.ErrNoReviewSession
		}
		return w.reviewStateLocked(), nil
	}
	return w.withReview(func(m *review.Machine) error { return m.HandleKey(key, textInputFocused) })
}

func (w *wizardUC) ReviewAutopilot(enabled bool) (*wizard.ReviewState, error) {
	return w.withReview(func(m *review.Machine) error {
		m.SetAutopilot(enabled)
		return nil
	})
}

func (w *wizardUC) ApplyTranscript(index int, text string) bool {
	w.mu.Lock()
	machine := w.machine
	w.mu.Unlock()
	if machine == nil {
		return false
	}
	return machine.CompleteTranscript(index, text)
}

// CloseReview ends the session. The accepted partition and total accepted
// seconds are computed once here and handed to the job state store; a
// close with at least one acceptance completes the review step, a close
// with none surfaces as a step error so the re-run affordance stays
// visible and transcription stays locked.
func (w *wizardUC) CloseReview() (*review.Summary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.machine == nil {
		return nil, wizard.ErrNoReviewSession
	}
	summary, err := w.machine.Close()
	if err != nil {
		return nil, err
	}

	if w.store != nil && w.store.RunningStep() == models.StepReview {
		generation := w.store.Generation()
		if len(summary.Accepted) > 0 {
			message := fmt.Sprintf("%d segments accepted (%.1fs)", len(summary.Accepted), summary.AcceptedSeconds)
			if cerr := w.store.CompleteStep(models.StepReview, generation, nil, message); cerr != nil {
				w.logger.Warnf("review completion dropped: %v", cerr)
			}
		} else {
			if ferr := w.store.FailStep(models.StepReview, generation, "no segments accepted"); ferr != nil {
				w.logger.Warnf("review failure dropped: %v", ferr)
			}
		}
		w.store.ApplyReview(summary.Accepted, summary.AcceptedSeconds)
	}
	return &summary, nil
}

func (w *wizardUC) AvatarURL(ctx context.Context, login string) (string, bool) {
	return w.avatars.Lookup(ctx, login)
}

func (w *wizardUC) ClearAvatarCache() {
	w.avatars.Clear()
}

func (w *wizardUC) ArtifactURL(ctx context.Context, path string) (string, error) {
	if w.artifactRepo != nil {
		url, err := w.artifactRepo.PresignArtifact(ctx, path)
		if err == nil {
			return url, nil
		}
		w.logger.Warnf("ArtifactURL - presign failed, falling back to engine: %v", err)
	}
	return w.engine.ArtifactURL(ctx, path)
}
