package models

// Segment is a candidate speech region detected by the engine. Index is
// the stable identity; array position changes under filtering, Index
// never does.
type Segment struct {
	Index    int      `json:"index"`
	Start    float64  `json:"start"`
	End      float64  `json:"end"`
	Duration float64  `json:"duration,omitempty"`
	RmsDb    *float64 `json:"rms_db,omitempty"`
}

// Seconds returns the supplied duration, falling back to end-start.
func (s Segment) Seconds() float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	return s.End - s.Start
}

// Vote is a human accept/reject decision on a segment.
type Vote string

const (
	VoteAccept Vote = "accept"
	VoteReject Vote = "reject"
)

type TranscriptState string

const (
	TranscriptPending TranscriptState = "pending"
	TranscriptDone    TranscriptState = "done"
)

// TranscriptJob is the async text result for one accepted segment.
type TranscriptJob struct {
	Index int             `json:"index"`
	State TranscriptState `json:"state"`
	Text  string          `json:"text,omitempty"`
}
