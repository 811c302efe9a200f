package models

// StepID names one stage of the VOD-to-TTS pipeline, in fixed order.
type StepID string

const (
	StepVod      StepID = "vod"
	StepSanitize StepID = "sanitize"
	StepReview   StepID = "review"
	StepSrt      StepID = "srt"
	StepTrain    StepID = "train"
	StepTts      StepID = "tts"
)

// PipelineOrder returns the canonical step sequence.
func PipelineOrder() []StepID {
	return []StepID{StepVod, StepSanitize, StepReview, StepSrt, StepTrain, StepTts}
}

// Order returns the position of the step in the pipeline, or -1.
func (s StepID) Order() int {
	for i, id := range PipelineOrder() {
		if id == s {
			return i
		}
	}
	return -1
}

func (s StepID) Valid() bool {
	return s.Order() >= 0
}

// Terminal reports whether the step is the last one in the pipeline.
func (s StepID) Terminal() bool {
	order := PipelineOrder()
	return s == order[len(order)-1]
}

type StepStatus string

const (
	StepStatusIdle    StepStatus = "idle"
	StepStatusRunning StepStatus = "running"
	StepStatusDone    StepStatus = "done"
	StepStatusError   StepStatus = "error"
)

type StepOutput struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Step is the live per-session state of one pipeline stage. Locked is
// derived from the ready flags of all prior steps and recomputed after
// every mutation, never stored independently.
type Step struct {
	ID         StepID       `json:"id"`
	Status     StepStatus   `json:"status"`
	Ready      bool         `json:"ready"`
	Locked     bool         `json:"locked"`
	HasPreview bool         `json:"has_preview"`
	Message    string       `json:"message,omitempty"`
	Outputs    []StepOutput `json:"outputs,omitempty"`
}
