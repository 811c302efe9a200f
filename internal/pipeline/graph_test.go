package pipeline

import (
	"testing"

	"github.com/ppotepa/streamcraft-tts/internal/models"
)

func TestComputeLocks(t *testing.T) {
	tests := []struct {
		name   string
		ready  []bool
		locked []bool
	}{
		{
			name:   "all pending",
			ready:  []bool{false, false, false},
			locked: []bool{false, true, true},
		},
		{
			name:   "first done",
			ready:  []bool{true, false, false},
			locked: []bool{false, false, true},
		},
		{
			name:   "gap locks everything after",
			ready:  []bool{true, false, true, true},
			locked: []bool{false, false, true, true},
		},
		{
			name:   "all done",
			ready:  []bool{true, true, true},
			locked: []bool{false, false, false},
		},
		{
			name:   "empty",
			ready:  nil,
			locked: []bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeLocks(tt.ready)
			if len(got) != len(tt.locked) {
				t.Fatalf("got %d locks, want %d", len(got), len(tt.locked))
			}
			for i := range got {
				if got[i] != tt.locked[i] {
					t.Errorf("locked[%d] = %v, want %v", i, got[i], tt.locked[i])
				}
			}
		})
	}
}

func TestComputeLocksFirstStepNeverLocked(t *testing.T) {
	for _, ready := range [][]bool{{false}, {true}, {false, true, false}, {true, true}} {
		if locked := ComputeLocks(ready); locked[0] {
			t.Errorf("locked[0] = true for ready = %v", ready)
		}
	}
}

func TestBuildStepsFromJob(t *testing.T) {
	job := &models.Job{
		Steps: map[models.StepID]bool{
			models.StepVod:      true,
			models.StepSanitize: true,
		},
	}

	steps := BuildSteps(job, nil)
	if len(steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(steps))
	}
	if !steps[0].Ready || steps[0].Status != models.StepStatusDone {
		t.Errorf("vod should be done/ready, got %+v", steps[0])
	}
	if !steps[1].Ready {
		t.Errorf("sanitize should be ready")
	}
	if steps[2].Locked {
		t.Errorf("review should be unlocked after sanitize completion")
	}
	if steps[2].Ready || steps[2].Status != models.StepStatusIdle {
		t.Errorf("freshly unlocked review should start idle/not-ready, got %+v", steps[2])
	}
	if !steps[3].Locked || !steps[4].Locked || !steps[5].Locked {
		t.Errorf("srt/train/tts should be locked")
	}
}

func TestBuildStepsWithOverride(t *testing.T) {
	job := &models.Job{
		Steps: map[models.StepID]bool{
			models.StepVod:      true,
			models.StepSanitize: true,
			models.StepReview:   true,
			models.StepSrt:      true,
		},
	}

	override := models.StepSanitize
	steps := BuildSteps(job, &override)

	if !steps[0].Ready {
		t.Errorf("vod before the override must keep its completed state")
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].Ready {
			t.Errorf("%s at/after override must not be ready", steps[i].ID)
		}
		if steps[i].Status != models.StepStatusIdle {
			t.Errorf("%s at/after override must be idle, got %s", steps[i].ID, steps[i].Status)
		}
	}
	if steps[1].Locked {
		t.Errorf("sanitize is directly unlocked by completed vod")
	}
	if !steps[2].Locked {
		t.Errorf("review must be re-locked after the override reset")
	}
}

func TestResumeTarget(t *testing.T) {
	tests := []struct {
		name string
		job  *models.Job
		want models.StepID
	}{
		{"nil job", nil, models.StepVod},
		{"fresh job", &models.Job{Steps: map[models.StepID]bool{}}, models.StepVod},
		{
			"mid pipeline",
			&models.Job{Steps: map[models.StepID]bool{models.StepVod: true, models.StepSanitize: true}},
			models.StepReview,
		},
		{
			"all complete resumes at terminal",
			&models.Job{Steps: map[models.StepID]bool{
				models.StepVod: true, models.StepSanitize: true, models.StepReview: true,
				models.StepSrt: true, models.StepTrain: true, models.StepTts: true,
			}},
			models.StepTts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResumeTarget(tt.job); got != tt.want {
				t.Errorf("ResumeTarget = %s, want %s", got, tt.want)
			}
		})
	}
}
