package pipeline

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ppotepa/streamcraft-tts/internal/models"
)

// ErrUnknownStep is returned for a step id outside the pipeline.
var ErrUnknownStep = errors.New("unknown step")

// ErrStepLocked is returned when starting a step whose prerequisites are
// not all ready.
var ErrStepLocked = errors.New("step is locked")

// ErrStepRunning is returned when starting a step while another run is
// active.
var ErrStepRunning = errors.New("another step is already running")

// ErrInvalidTransition is returned for complete/fail calls that do not
// match the running step.
var ErrInvalidTransition = errors.New("invalid step transition")

// ErrStaleGeneration is returned when a completion or failure arrives for
// a run that has since been superseded.
var ErrStaleGeneration = errors.New("stale run generation")

// ErrCancelUnsupported is returned by CancelStep: the engine has no
// cancel endpoint, and pretending otherwise would claim an effect that
// never happens.
var ErrCancelUnsupported = errors.New("cancelling a running step is not supported")

// Store tracks the live step state for one open job. All mutations are
// serialized behind the mutex; lock flags are recomputed after every
// change that can affect them.
type Store struct {
	mu         sync.RWMutex
	job        *models.Job
	steps      []models.Step
	active     models.StepID
	running    models.StepID
	generation string
}

// NewStore reconstructs live step state from the job's completion flags,
// optionally forcing a redo from the override step.
func NewStore(job *models.Job, override *models.StepID) *Store {
	steps := BuildSteps(job, override)
	active := ResumeTarget(job)
	if override != nil && override.Valid() {
		active = *override
	}
	return &Store{
		job:    job,
		steps:  steps,
		active: active,
	}
}

// Job returns a snapshot of the job this store was opened for. Callers
// get their own copy; the live job keeps being mutated by running steps.
func (s *Store) Job() *models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job.Clone()
}

// Steps returns a snapshot of the live step list.
func (s *Store) Steps() []models.Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// ActiveStep is the step the UI should focus. It follows resume targets,
// explicit starts and failures.
func (s *Store) ActiveStep() models.StepID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// RunningStep returns the currently running step id, or "".
func (s *Store) RunningStep() models.StepID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Generation returns the run generation of the current or most recent
// run. Progress events and completions carrying another generation are
// stale and must be ignored.
func (s *Store) Generation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// StartStep begins a run of the given step. Fails for unknown, locked or
// concurrently running steps. The prior message is preserved so a re-run
// after an error keeps the error visible until the run reports progress.
// Returns the generation assigned to this run.
func (s *Store) StartStep(id models.StepID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := id.Order()
	if idx < 0 {
		return "", ErrUnknownStep
	}
	if s.running != "" {
		return "", ErrStepRunning
	}
	if s.steps[idx].Locked {
		return "", ErrStepLocked
	}

	s.steps[idx].Status = models.StepStatusRunning
	s.steps[idx].Ready = false
	s.steps[idx].HasPreview = false
	s.running = id
	s.active = id
	s.generation = uuid.New().String()
	recomputeLocks(s.steps)
	return s.generation, nil
}

// CompleteStep marks the running step done and ready, attaches its
// outputs and recomputes the lock chain. The generation must match the
// one StartStep returned for this run.
func (s *Store) CompleteStep(id models.StepID, generation string, outputs []models.StepOutput, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := id.Order()
	if idx < 0 {
		return ErrUnknownStep
	}
	if s.running != id {
		return ErrInvalidTransition
	}
	if generation != s.generation {
		return ErrStaleGeneration
	}

	s.steps[idx].Status = models.StepStatusDone
	s.steps[idx].Ready = true
	s.steps[idx].Outputs = outputs
	s.steps[idx].Message = message
	s.running = ""

	if s.job != nil {
		if s.job.Steps == nil {
			s.job.Steps = make(map[models.StepID]bool)
		}
		s.job.Steps[id] = true
		s.job.UpdatedAt = time.Now().UTC()
	}

	recomputeLocks(s.steps)
	if !id.Terminal() {
		s.active = models.PipelineOrder()[idx+1]
	}
	return nil
}

// FailStep marks the running step as errored. Ready stays false, the lock
// chain does not advance, and the active pointer snaps back to the failed
// step so the error cannot be silently skipped.
func (s *Store) FailStep(id models.StepID, generation string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := id.Order()
	if idx < 0 {
		return ErrUnknownStep
	}
	if s.running != id {
		return ErrInvalidTransition
	}
	if generation != s.generation {
		return ErrStaleGeneration
	}

	s.steps[idx].Status = models.StepStatusError
	s.steps[idx].Ready = false
	s.steps[idx].Message = message
	s.running = ""
	s.active = id
	recomputeLocks(s.steps)
	return nil
}

// CancelStep exists so the control surface has an honest answer.
func (s *Store) CancelStep(models.StepID) error {
	return ErrCancelUnsupported
}

// SetOutput records a produced output path on the job. The generation
// must match the current run so a superseded run cannot overwrite paths.
func (s *Store) SetOutput(generation, kind, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return ErrStaleGeneration
	}
	if s.job == nil || path == "" {
		return nil
	}
	if s.job.Outputs == nil {
		s.job.Outputs = make(map[string]string)
	}
	s.job.Outputs[kind] = path
	return nil
}

// SetPreview flags a step as having partial output available without
// touching its status.
func (s *Store) SetPreview(id models.StepID, hasPreview bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := id.Order()
	if idx < 0 {
		return ErrUnknownStep
	}
	s.steps[idx].HasPreview = hasPreview
	return nil
}

// ApplyReview records the review outcome. The srt step's ready flag is
// forced true iff at least one segment was accepted; with zero
// acceptances it is left exactly as it was.
func (s *Store) ApplyReview(accepted []int, acceptedSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job != nil {
		s.job.AcceptedSegments = accepted
		s.job.AcceptedSeconds = acceptedSeconds
	}
	if len(accepted) == 0 {
		return
	}

	idx := models.StepSrt.Order()
	s.steps[idx].Ready = true
	recomputeLocks(s.steps)
}
