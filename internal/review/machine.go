package review

import (
	"errors"
	"sync"

	"github.com/ppotepa/streamcraft-tts/internal/models"
)

// Phase is the coarse state of a review session.
type Phase string

const (
	PhaseNoSegments Phase = "no-segments"
	PhaseReviewing  Phase = "reviewing"
	PhaseClosed     Phase = "closed"
)

// ErrNotReviewing is returned for votes and navigation outside an open
// review with at least one segment.
var ErrNotReviewing = errors.New("no open review session")

// Keyboard keys the review screen binds globally.
const (
	KeyEnter     = "Enter"
	KeySpace     = " "
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeyEscape    = "Escape"
)

// Summary is the outcome of a closed review, partitioned by vote.
// AcceptedSeconds is computed here, once, and carried forward so later
// steps display it without recomputing.
type Summary struct {
	Accepted        []int   `json:"accepted"`
	Rejected        []int   `json:"rejected"`
	AcceptedSeconds float64 `json:"accepted_seconds"`
}

// Machine drives human review of detected speech segments: a vote ledger
// and a transcript-job ledger keyed by stable segment index, plus the
// current/playing cursor pair. Single-owner; all mutations go through the
// mutex.
type Machine struct {
	mu          sync.Mutex
	phase       Phase
	segments    []models.Segment
	votes       map[int]models.Vote
	transcripts map[int]*models.TranscriptJob
	currentIdx  int
	playingIdx  int
	playToken   uint64
	autopilot   bool
}

// NewMachine opens a review over the given segment list. An empty or
// malformed list degrades to the no-segments phase instead of failing.
func NewMachine(segments []models.Segment) *Machine {
	m := &Machine{
		votes:       make(map[int]models.Vote),
		transcripts: make(map[int]*models.TranscriptJob),
	}
	m.load(segments)
	return m
}

// SetSegments replaces the segment list, e.g. after a sanitize re-run
// with new parameters. The whole machine resets: cursors to zero, ledgers
// cleared, play token bumped exactly once.
func (m *Machine) SetSegments(segments []models.Segment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.load(segments)
	m.votes = make(map[int]models.Vote)
	m.transcripts = make(map[int]*models.TranscriptJob)
	m.currentIdx = 0
	m.playingIdx = 0
	m.playToken++
}

// load validates and installs segments, choosing the initial phase.
func (m *Machine) load(segments []models.Segment) {
	if !validSegments(segments) {
		m.segments = nil
		m.phase = PhaseNoSegments
		return
	}
	m.segments = segments
	m.phase = PhaseReviewing
}

func validSegments(segments []models.Segment) bool {
	if len(segments) == 0 {
		return false
	}
	seen := make(map[int]struct{}, len(segments))
	for _, seg := range segments {
		if seg.End <= seg.Start {
			return false
		}
		if _, dup := seen[seg.Index]; dup {
			return false
		}
		seen[seg.Index] = struct{}{}
	}
	return true
}

// Phase returns the current review phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Current returns the segment under the voting cursor.
func (m *Machine) Current() (models.Segment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseReviewing {
		return models.Segment{}, false
	}
	return m.segments[m.currentIdx], true
}

// Playing returns the segment whose audio window is scoped for playback.
// Playback must never leave [start, end] of this segment.
func (m *Machine) Playing() (models.Segment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseReviewing {
		return models.Segment{}, false
	}
	return m.segments[m.playingIdx], true
}

// PlayToken is the monotonically increasing restart signal. Any observer
// seeing a changed value seeks to the playing segment's start and plays,
// even when the index itself did not change.
func (m *Machine) PlayToken() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playToken
}

// SetAutopilot toggles auto-advance after each vote.
func (m *Machine) SetAutopilot(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autopilot = enabled
}

func (m *Machine) Autopilot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autopilot
}

// Accept votes the current segment in and enqueues a transcript job for
// it unless one already exists. Voting is idempotent: a re-vote
// overwrites, never appends.
func (m *Machine) Accept() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseReviewing {
		return ErrNotReviewing
	}
	seg := m.segments[m.currentIdx]
	m.votes[seg.Index] = models.VoteAccept
	if _, exists := m.transcripts[seg.Index]; !exists {
		m.transcripts[seg.Index] = &models.TranscriptJob{
			Index: seg.Index,
			State: models.TranscriptPending,
		}
	}
	m.advanceIfAutopilot()
	return nil
}

// Reject votes the current segment out and discards any transcript entry
// for it. An in-flight transcript result for a rejected segment lands on
// a deleted ledger entry and is dropped by CompleteTranscript.
func (m *Machine) Reject() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseReviewing {
		return ErrNotReviewing
	}
	seg := m.segments[m.currentIdx]
	m.votes[seg.Index] = models.VoteReject
	delete(m.transcripts, seg.Index)
	m.advanceIfAutopilot()
	return nil
}

// advanceIfAutopilot moves the voting cursor one forward when autopilot
// is on. At the last segment it stays put: no wrap, no auto-close, and
// playback is not restarted by a vote.
func (m *Machine) advanceIfAutopilot() {
	if !m.autopilot {
		return
	}
	if m.currentIdx < len(m.segments)-1 {
		m.currentIdx++
	}
}

// JumpTo clamps idx into range, aligns both cursors on it and bumps the
// play token. Jumping to the current index is the "replay" gesture.
func (m *Machine) JumpTo(idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jumpTo(idx)
}

func (m *Machine) jumpTo(idx int) error {
	if m.phase != PhaseReviewing {
		return ErrNotReviewing
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.segments)-1 {
		idx = len(m.segments) - 1
	}
	m.currentIdx = idx
	m.playingIdx = idx
	m.playToken++
	return nil
}

// HandleKey applies the global review key bindings. All bindings are
// suppressed while a text input has focus so typing a transcript never
// votes.
func (m *Machine) HandleKey(key string, textInputFocused bool) error {
	if textInputFocused {
		return nil
	}
	switch key {
	case KeyEnter:
		return m.Accept()
	case KeySpace, "Space":
		return m.Reject()
	case KeyArrowUp:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.jumpTo(m.currentIdx - 1)
	case KeyArrowDown:
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.jumpTo(m.currentIdx + 1)
	case KeyEscape:
		_, err := m.Close()
		return err
	}
	return nil
}

// Close ends the session and returns the partitioned vote ledger with the
// total accepted duration. Index lists follow segment order, not vote
// order.
func (m *Machine) Close() (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseClosed {
		return Summary{}, ErrNotReviewing
	}

	summary := Summary{Accepted: []int{}, Rejected: []int{}}
	for _, seg := range m.segments {
		switch m.votes[seg.Index] {
		case models.VoteAccept:
			summary.Accepted = append(summary.Accepted, seg.Index)
			summary.AcceptedSeconds += seg.Seconds()
		case models.VoteReject:
			summary.Rejected = append(summary.Rejected, seg.Index)
		}
	}
	m.phase = PhaseClosed
	return summary, nil
}

// CompleteTranscript applies an async transcript result by segment index.
// Results for indexes no longer in the ledger (rejected after acceptance,
// or reset) are dropped.
func (m *Machine) CompleteTranscript(index int, text string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.transcripts[index]
	if !ok {
		return false
	}
	job.State = models.TranscriptDone
	job.Text = text
	return true
}

// Vote returns the recorded vote for a segment index.
func (m *Machine) Vote(index int) (models.Vote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.votes[index]
	return v, ok
}

// Votes returns a copy of the vote ledger.
func (m *Machine) Votes() map[int]models.Vote {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]models.Vote, len(m.votes))
	for k, v := range m.votes {
		out[k] = v
	}
	return out
}

// Transcript returns a copy of the transcript entry for an index.
func (m *Machine) Transcript(index int) (models.TranscriptJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.transcripts[index]
	if !ok {
		return models.TranscriptJob{}, false
	}
	return *job, true
}

// Segments returns the segment list under review.
func (m *Machine) Segments() []models.Segment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// CurrentIndex returns the voting cursor position (array position, not
// segment identity).
func (m *Machine) CurrentIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentIdx
}
