package models

import "time"

// Well-known output kinds persisted on a job.
const (
	OutputAudioPath    = "audioPath"
	OutputSanitizePath = "sanitizePath"
	OutputSegmentsPath = "segmentsPath"
	OutputManifestPath = "manifestPath"
	OutputDatasetPath  = "datasetPath"
	OutputClipsDir     = "clipsDir"
	OutputSrtPath      = "srtPath"
	OutputTtsPath      = "ttsPath"
)

// Job is the persisted unit of work for one source VOD, as stored by the
// processing engine. Steps holds coarse completion flags; the live Step
// state during an active session is reconstructed from them.
type Job struct {
	JobID            string            `json:"job_id" db:"job_id" redis:"job_id" validate:"omitempty"`
	VodURL           string            `json:"vod_url" db:"vod_url" redis:"vod_url" validate:"required,url"`
	Streamer         string            `json:"streamer" db:"streamer" redis:"streamer"`
	Title            string            `json:"title" db:"title" redis:"title"`
	Steps            map[StepID]bool   `json:"steps" redis:"steps"`
	Outputs          map[string]string `json:"outputs" redis:"outputs"`
	AcceptedSegments []int             `json:"accepted_segments,omitempty" redis:"accepted_segments"`
	AcceptedSeconds  float64           `json:"accepted_seconds,omitempty" redis:"accepted_seconds"`
	CreatedAt        time.Time         `json:"created_at" db:"created_at" redis:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" db:"updated_at" redis:"updated_at"`
}

// Clone returns a deep copy safe to read and marshal while the original
// keeps being mutated.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.Steps != nil {
		out.Steps = make(map[StepID]bool, len(j.Steps))
		for k, v := range j.Steps {
			out.Steps[k] = v
		}
	}
	if j.Outputs != nil {
		out.Outputs = make(map[string]string, len(j.Outputs))
		for k, v := range j.Outputs {
			out.Outputs[k] = v
		}
	}
	if j.AcceptedSegments != nil {
		out.AcceptedSegments = append([]int(nil), j.AcceptedSegments...)
	}
	return &out
}

type JobList struct {
	TotalCount int   `json:"total_count"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	HasMore    bool  `json:"has_more"`
	Jobs       []Job `json:"jobs"`
}
