package progress

import "math"

// Stage names one sub-phase of a running step.
type Stage string

const (
	StageUvr     Stage = "uvr"
	StageSegment Stage = "segment"
	StagePreview Stage = "preview"
	StageRun     Stage = "run"
)

// Weights maps each configured sub-stage to its fractional contribution.
// Weights sum to 1.0; a disabled sub-stage carries weight 0.
type Weights map[Stage]float64

// SanitizeWeights is the configured weight table for the sanitize step,
// depending on whether vocal isolation runs.
func SanitizeWeights(extractVocals bool) Weights {
	if extractVocals {
		return Weights{StageUvr: 0.6, StageSegment: 0.3, StagePreview: 0.1}
	}
	return Weights{StageUvr: 0, StageSegment: 0.7, StagePreview: 0.3}
}

// overallFloor keeps a running step visibly in motion before the first
// real sub-stage event arrives.
const (
	overallFloor = 2
	overallCeil  = 100
)

// Overall folds raw sub-stage percentages into one weighted percentage,
// clamped into [2, 100].
func Overall(weights Weights, raw map[Stage]float64) int {
	var sum float64
	for stage, w := range weights {
		sum += w * raw[stage]
	}
	overall := int(math.Round(sum))
	if overall < overallFloor {
		return overallFloor
	}
	if overall > overallCeil {
		return overallCeil
	}
	return overall
}
