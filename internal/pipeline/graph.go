package pipeline

import "github.com/ppotepa/streamcraft-tts/internal/models"

// ComputeLocks derives the locked flag for every step from the ordered
// ready flags. Step k is locked iff some step j < k is not ready; step 0
// is never locked.
func ComputeLocks(ready []bool) []bool {
	locked := make([]bool, len(ready))
	unlocked := true
	for k := range ready {
		locked[k] = !unlocked
		unlocked = unlocked && ready[k]
	}
	return locked
}

// BuildSteps reconstructs the live step list from a job's coarse
// completion flags. A completed step becomes done/ready; everything else
// starts idle and not ready. When override is set, every step at or after
// it in pipeline order is forced back to idle/not-ready regardless of
// completion, while earlier steps keep their completed state.
func BuildSteps(job *models.Job, override *models.StepID) []models.Step {
	order := models.PipelineOrder()
	steps := make([]models.Step, len(order))

	overrideAt := len(order)
	if override != nil {
		if idx := override.Order(); idx >= 0 {
			overrideAt = idx
		}
	}

	for i, id := range order {
		step := models.Step{ID: id, Status: models.StepStatusIdle}
		if i < overrideAt && job != nil && job.Steps[id] {
			step.Status = models.StepStatusDone
			step.Ready = true
		}
		steps[i] = step
	}

	recomputeLocks(steps)
	return steps
}

// ResumeTarget is the first step the user should be sent to when opening
// a job: the first incomplete step in pipeline order, or the terminal
// step when everything is done.
func ResumeTarget(job *models.Job) models.StepID {
	order := models.PipelineOrder()
	for _, id := range order {
		if job == nil || !job.Steps[id] {
			return id
		}
	}
	return order[len(order)-1]
}

func recomputeLocks(steps []models.Step) {
	ready := make([]bool, len(steps))
	for i := range steps {
		ready[i] = steps[i].Ready
	}
	locked := ComputeLocks(ready)
	for i := range steps {
		steps[i].Locked = locked[i]
	}
}
