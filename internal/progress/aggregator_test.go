package progress

import "testing"

func TestOverall(t *testing.T) {
	uvrOn := SanitizeWeights(true)
	uvrOff := SanitizeWeights(false)

	tests := []struct {
		name    string
		weights Weights
		raw     map[Stage]float64
		want    int
	}{
		{
			name:    "uvr halfway",
			weights: uvrOn,
			raw:     map[Stage]float64{StageUvr: 50, StageSegment: 0, StagePreview: 0},
			want:    30,
		},
		{
			name:    "no events yet floors at 2",
			weights: uvrOn,
			raw:     map[Stage]float64{},
			want:    2,
		},
		{
			name:    "everything complete",
			weights: uvrOn,
			raw:     map[Stage]float64{StageUvr: 100, StageSegment: 100, StagePreview: 100},
			want:    100,
		},
		{
			name:    "disabled stage contributes nothing",
			weights: uvrOff,
			raw:     map[Stage]float64{StageUvr: 100, StageSegment: 50, StagePreview: 0},
			want:    35,
		},
		{
			name:    "rounding",
			weights: uvrOff,
			raw:     map[Stage]float64{StageSegment: 33, StagePreview: 10},
			want:    26, // 23.1 + 3.0 rounds to 26
		},
		{
			name:    "overshoot clamps to 100",
			weights: Weights{StageSegment: 1.0},
			raw:     map[Stage]float64{StageSegment: 140},
			want:    100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overall(tt.weights, tt.raw); got != tt.want {
				t.Errorf("Overall = %d, want %d", got, tt.want)
			}
		})
	}
}
