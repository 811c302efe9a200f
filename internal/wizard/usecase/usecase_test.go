package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ppotepa/streamcraft-tts/internal/config"
	"github.com/ppotepa/streamcraft-tts/internal/engine"
	"github.com/ppotepa/streamcraft-tts/internal/models"
	"github.com/ppotepa/streamcraft-tts/internal/review"
	"github.com/ppotepa/streamcraft-tts/internal/wizard"
	"github.com/ppotepa/streamcraft-tts/pkg/utils"
)

type nopLogger struct{}

func (nopLogger) InitLogger()                           {}
func (nopLogger) Debug(args ...interface{})             {}
func (nopLogger) Debugf(t string, args ...interface{})  {}
func (nopLogger) Info(args ...interface{})              {}
func (nopLogger) Infof(t string, args ...interface{})   {}
func (nopLogger) Warn(args ...interface{})              {}
func (nopLogger) Warnf(t string, args ...interface{})   {}
func (nopLogger) Error(args ...interface{})             {}
func (nopLogger) Errorf(t string, args ...interface{})  {}
func (nopLogger) DPanic(args ...interface{})            {}
func (nopLogger) DPanicf(t string, args ...interface{}) {}
func (nopLogger) Fatal(args ...interface{})             {}
func (nopLogger) Fatalf(t string, args ...interface{})  {}

type fakeEngine struct {
	jobs        []models.Job
	meta        *models.VodMeta
	checkCalls  int
	deleted     []string
	audioErr    error
	sanitizeRes *engine.SanitizeResult
	ttsText     string
}

func (f *fakeEngine) CheckVod(ctx context.Context, vodURL string) (*models.VodMeta, error) {
	f.checkCalls++
	if f.meta == nil {
		return nil, errors.New("not found")
	}
	return f.meta, nil
}

func (f *fakeEngine) RunAudio(ctx context.Context, req engine.AudioRequest) (*engine.AudioResult, error) {
	if f.audioErr != nil {
		return nil, f.audioErr
	}
	return &engine.AudioResult{Path: "jobs/a/audio.m4a"}, nil
}

func (f *fakeEngine) RunSanitize(ctx context.Context, req engine.SanitizeRequest, onProgress engine.ProgressFunc, onLog engine.LogFunc) (*engine.SanitizeResult, error) {
	if onProgress != nil {
		onProgress("uvr", 100)
		onProgress("segment", 100)
	}
	if f.sanitizeRes != nil {
		return f.sanitizeRes, nil
	}
	return &engine.SanitizeResult{CleanPath: "jobs/a/clean.wav"}, nil
}

func (f *fakeEngine) RunSrt(ctx context.Context, vodURL string) (*engine.SrtResult, error) {
	return &engine.SrtResult{Path: "jobs/a/captions.srt", Lines: 42}, nil
}

func (f *fakeEngine) RunTrain(ctx context.Context, vodURL string) (*engine.TrainResult, error) {
	return &engine.TrainResult{DatasetPath: "jobs/a/dataset"}, nil
}

func (f *fakeEngine) RunTts(ctx context.Context, req engine.TtsRequest) (*engine.TtsResult, error) {
	f.ttsText = req.Text
	return &engine.TtsResult{OutputPath: "jobs/a/speech.wav"}, nil
}

func (f *fakeEngine) GetJobs(ctx context.Context) ([]models.Job, error) {
	return f.jobs, nil
}

func (f *fakeEngine) DeleteJob(ctx context.Context, jobID string) error {
	f.deleted = append(f.deleted, jobID)
	return nil
}

func (f *fakeEngine) ArtifactURL(ctx context.Context, path string) (string, error) {
	return "http://engine/artifacts/" + path, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			AudioQuality:  "high",
			SanitizeMode:  "auto",
			ExtractVocals: true,
		},
	}
}

func testJob(id string) models.Job {
	return models.Job{
		JobID:    id,
		VodURL:   "https://www.twitch.tv/videos/123",
		Streamer: "somecaster",
		Steps:    map[models.StepID]bool{},
	}
}

func newTestUC(eng wizard.Engine) wizard.UseCase {
	return NewWizardUseCase(testConfig(), eng, nil, nil, nopLogger{})
}

func waitForIdle(t *testing.T, uc wizard.UseCase) *wizard.SessionState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state, err := uc.Session()
		if err != nil {
			t.Fatalf("Session() error: %v", err)
		}
		if state.Running == "" {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("step did not settle")
	return nil
}

func TestSessionRequiresOpenJob(t *testing.T) {
	uc := newTestUC(&fakeEngine{})
	if _, err := uc.Session(); !errors.Is(err, wizard.ErrNoOpenJob) {
		t.Fatalf("got %v, want ErrNoOpenJob", err)
	}
}

func TestOpenJobUnknownID(t *testing.T) {
	uc := newTestUC(&fakeEngine{jobs: []models.Job{testJob("a")}})
	if _, err := uc.OpenJob(context.Background(), "missing", nil); !errors.Is(err, wizard.ErrJobNotFound) {
		t.Fatalf("got %v, want ErrJobNotFound", err)
	}
}

func TestStartStepCompletes(t *testing.T) {
	eng := &fakeEngine{jobs: []models.Job{testJob("a")}}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	state, err := uc.StartStep(context.Background(), models.StepVod, wizard.StepParams{})
	if err != nil {
		t.Fatal(err)
	}
	if state.Running != models.StepVod {
		t.Fatalf("running = %q, want vod", state.Running)
	}

	state = waitForIdle(t, uc)
	if !state.Job.Steps[models.StepVod] {
		t.Fatal("vod step not recorded complete")
	}
	if got := state.Job.Outputs[models.OutputAudioPath]; got != "jobs/a/audio.m4a" {
		t.Fatalf("audio output = %q", got)
	}
}

func TestSessionSnapshotSafeDuringRuns(t *testing.T) {
	eng := &fakeEngine{jobs: []models.Job{testJob("a")}}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			state, err := uc.Session()
			if err != nil {
				continue
			}
			if _, err := json.Marshal(state.Job); err != nil {
				t.Errorf("marshal session job: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 20; i++ {
		if _, err := uc.StartStep(context.Background(), models.StepVod, wizard.StepParams{}); err != nil {
			t.Fatal(err)
		}
		waitForIdle(t, uc)
	}
	close(stop)
	wg.Wait()
}

func TestStartStepFailureSurfaces(t *testing.T) {
	eng := &fakeEngine{jobs: []models.Job{testJob("a")}, audioErr: errors.New("yt-dlp exited 1")}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.StartStep(context.Background(), models.StepVod, wizard.StepParams{}); err != nil {
		t.Fatal(err)
	}

	state := waitForIdle(t, uc)
	var vodStep *models.Step
	for i := range state.Steps {
		if state.Steps[i].ID == models.StepVod {
			vodStep = &state.Steps[i]
		}
	}
	if vodStep == nil || vodStep.Status != models.StepStatusError {
		t.Fatalf("vod step = %+v, want error status", vodStep)
	}
	if vodStep.Message != "yt-dlp exited 1" {
		t.Fatalf("message = %q", vodStep.Message)
	}
}

func TestSanitizeFeedsProgressAndSegments(t *testing.T) {
	job := testJob("a")
	job.Steps[models.StepVod] = true
	eng := &fakeEngine{
		jobs: []models.Job{job},
		sanitizeRes: &engine.SanitizeResult{
			CleanPath:    "jobs/a/clean.wav",
			SegmentsPath: "jobs/a/segments.json",
			Segments:     2,
			PreviewSegments: []models.Segment{
				{Index: 0, Start: 0, End: 2},
				{Index: 1, Start: 5, End: 8},
			},
		},
	}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.StartStep(context.Background(), models.StepSanitize, wizard.StepParams{}); err != nil {
		t.Fatal(err)
	}
	waitForIdle(t, uc)

	view := uc.ProgressSince(0)
	if view.Overall < 2 {
		t.Fatalf("overall = %d", view.Overall)
	}
	if len(view.Events) == 0 {
		t.Fatal("no progress events recorded")
	}

	review, err := uc.OpenReview()
	if err != nil {
		t.Fatalf("OpenReview() error: %v", err)
	}
	if len(review.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(review.Segments))
	}
}

func TestReviewCloseCompletesStep(t *testing.T) {
	job := testJob("a")
	job.Steps[models.StepVod] = true
	eng := &fakeEngine{
		jobs: []models.Job{job},
		sanitizeRes: &engine.SanitizeResult{
			CleanPath: "jobs/a/clean.wav",
			PreviewSegments: []models.Segment{
				{Index: 0, Start: 0, End: 2},
				{Index: 1, Start: 5, End: 8},
			},
		},
	}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.StartStep(context.Background(), models.StepSanitize, wizard.StepParams{}); err != nil {
		t.Fatal(err)
	}
	waitForIdle(t, uc)

	if _, err := uc.OpenReview(); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.ReviewAccept(); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.ReviewJump(1); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.ReviewReject(); err != nil {
		t.Fatal(err)
	}

	summary, err := uc.CloseReview()
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Accepted) != 1 || summary.Accepted[0] != 0 {
		t.Fatalf("accepted = %v", summary.Accepted)
	}

	state, err := uc.Session()
	if err != nil {
		t.Fatal(err)
	}
	if !state.Job.Steps[models.StepReview] {
		t.Fatal("review step not recorded complete")
	}
	if state.Job.AcceptedSeconds != 2.0 {
		t.Fatalf("accepted seconds = %v", state.Job.AcceptedSeconds)
	}
}

func TestReviewCloseWithNothingAcceptedFails(t *testing.T) {
	job := testJob("a")
	job.Steps[models.StepVod] = true
	eng := &fakeEngine{
		jobs: []models.Job{job},
		sanitizeRes: &engine.SanitizeResult{
			PreviewSegments: []models.Segment{{Index: 0, Start: 0, End: 2}},
		},
	}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.StartStep(context.Background(), models.StepSanitize, wizard.StepParams{}); err != nil {
		t.Fatal(err)
	}
	waitForIdle(t, uc)

	if _, err := uc.OpenReview(); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.ReviewReject(); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.CloseReview(); err != nil {
		t.Fatal(err)
	}

	state, err := uc.Session()
	if err != nil {
		t.Fatal(err)
	}
	var reviewStep *models.Step
	for i := range state.Steps {
		if state.Steps[i].ID == models.StepReview {
			reviewStep = &state.Steps[i]
		}
	}
	if reviewStep == nil || reviewStep.Status != models.StepStatusError {
		t.Fatalf("review step = %+v, want error status", reviewStep)
	}
}

func TestReviewEscapeCloses(t *testing.T) {
	job := testJob("a")
	job.Steps[models.StepVod] = true
	eng := &fakeEngine{
		jobs: []models.Job{job},
		sanitizeRes: &engine.SanitizeResult{
			PreviewSegments: []models.Segment{{Index: 0, Start: 0, End: 2}},
		},
	}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.StartStep(context.Background(), models.StepSanitize, wizard.StepParams{}); err != nil {
		t.Fatal(err)
	}
	waitForIdle(t, uc)

	if _, err := uc.OpenReview(); err != nil {
		t.Fatal(err)
	}
	state, err := uc.ReviewKey(review.KeyEscape, false)
	if err != nil {
		t.Fatal(err)
	}
	if state.Phase != review.PhaseClosed {
		t.Fatalf("phase = %q, want closed", state.Phase)
	}
}

func TestOpenReviewWithoutSegments(t *testing.T) {
	uc := newTestUC(&fakeEngine{jobs: []models.Job{testJob("a")}})
	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.OpenReview(); !errors.Is(err, wizard.ErrNoSegments) {
		t.Fatalf("got %v, want ErrNoSegments", err)
	}
}

func TestListJobsPagination(t *testing.T) {
	jobs := make([]models.Job, 25)
	for i := range jobs {
		jobs[i] = testJob(string(rune('a' + i)))
	}
	uc := newTestUC(&fakeEngine{jobs: jobs})

	list, err := uc.ListJobs(context.Background(), &utils.Pagination{Page: 2, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if list.TotalCount != 25 || len(list.Jobs) != 10 {
		t.Fatalf("total = %d, page len = %d", list.TotalCount, len(list.Jobs))
	}
	if !list.HasMore {
		t.Fatal("expected more pages after page 2 of 25")
	}
}

func TestDeleteJobDropsOpenSession(t *testing.T) {
	eng := &fakeEngine{jobs: []models.Job{testJob("a")}}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if err := uc.DeleteJob(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	if len(eng.deleted) != 1 || eng.deleted[0] != "a" {
		t.Fatalf("deleted = %v", eng.deleted)
	}
	if _, err := uc.Session(); !errors.Is(err, wizard.ErrNoOpenJob) {
		t.Fatalf("got %v, want ErrNoOpenJob after delete", err)
	}
}

func TestTtsForwardsText(t *testing.T) {
	job := testJob("a")
	for _, id := range []models.StepID{models.StepVod, models.StepSanitize, models.StepReview, models.StepSrt, models.StepTrain} {
		job.Steps[id] = true
	}
	eng := &fakeEngine{jobs: []models.Job{job}}
	uc := newTestUC(eng)

	if _, err := uc.OpenJob(context.Background(), "a", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.StartStep(context.Background(), models.StepTts, wizard.StepParams{Text: "hello chat"}); err != nil {
		t.Fatal(err)
	}
	waitForIdle(t, uc)

	if eng.ttsText != "hello chat" {
		t.Fatalf("tts text = %q", eng.ttsText)
	}
}

func TestArtifactURLFallsBackToEngine(t *testing.T) {
	uc := newTestUC(&fakeEngine{})
	url, err := uc.ArtifactURL(context.Background(), "jobs/a/speech.wav")
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://engine/artifacts/jobs/a/speech.wav" {
		t.Fatalf("url = %q", url)
	}
}
