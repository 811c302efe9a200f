package review

import (
	"errors"
	"sync"
	"testing"

	"github.com/ppotepa/streamcraft-tts/internal/models"
)

func twoSegments() []models.Segment {
	return []models.Segment{
		{Index: 0, Start: 0, End: 4},
		{Index: 1, Start: 6, End: 10},
	}
}

func TestInitialPhase(t *testing.T) {
	if got := NewMachine(nil).Phase(); got != PhaseNoSegments {
		t.Errorf("empty list should open as no-segments, got %s", got)
	}
	if got := NewMachine(twoSegments()).Phase(); got != PhaseReviewing {
		t.Errorf("non-empty list should open as reviewing, got %s", got)
	}
}

func TestMalformedSegmentsDegrade(t *testing.T) {
	tests := []struct {
		name     string
		segments []models.Segment
	}{
		{"inverted range", []models.Segment{{Index: 0, Start: 5, End: 2}}},
		{"zero length", []models.Segment{{Index: 0, Start: 3, End: 3}}},
		{"duplicate index", []models.Segment{{Index: 1, Start: 0, End: 1}, {Index: 1, Start: 2, End: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewMachine(tt.segments).Phase(); got != PhaseNoSegments {
				t.Errorf("phase = %s, want no-segments", got)
			}
		})
	}
}

func TestVoteIdempotent(t *testing.T) {
	m := NewMachine(twoSegments())

	if err := m.Accept(); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := m.Accept(); err != nil {
		t.Fatalf("second accept: %v", err)
	}

	votes := m.Votes()
	if len(votes) != 1 || votes[0] != models.VoteAccept {
		t.Fatalf("votes = %v, want exactly one accept for index 0", votes)
	}
}

func TestRejectDiscardsTranscript(t *testing.T) {
	m := NewMachine(twoSegments())

	_ = m.Accept()
	if _, ok := m.Transcript(0); !ok {
		t.Fatalf("accept should enqueue a transcript job")
	}

	_ = m.Reject()
	if _, ok := m.Transcript(0); ok {
		t.Fatalf("reject must remove the transcript entry")
	}
	// A late async result for the discarded job is dropped.
	if m.CompleteTranscript(0, "hello chat") {
		t.Fatalf("transcript completion for a rejected segment must be ignored")
	}
}

func TestTranscriptCompletionByIndex(t *testing.T) {
	m := NewMachine(twoSegments())
	_ = m.Accept()
	_ = m.JumpTo(1)
	_ = m.Accept()

	if !m.CompleteTranscript(1, "second") {
		t.Fatalf("completion for a live ledger entry should apply")
	}
	job, _ := m.Transcript(1)
	if job.State != models.TranscriptDone || job.Text != "second" {
		t.Fatalf("transcript not applied by index: %+v", job)
	}
	if job0, _ := m.Transcript(0); job0.State != models.TranscriptPending {
		t.Fatalf("wrong entry touched: %+v", job0)
	}
}

func TestAutopilotAdvance(t *testing.T) {
	m := NewMachine(twoSegments())
	m.SetAutopilot(true)

	_ = m.Accept()
	if m.CurrentIndex() != 1 {
		t.Fatalf("autopilot should advance to 1, got %d", m.CurrentIndex())
	}

	// At the last segment: stay put, no wrap, no auto-close.
	_ = m.Reject()
	if m.CurrentIndex() != 1 {
		t.Fatalf("autopilot must not advance past the last segment")
	}
	if m.Phase() != PhaseReviewing {
		t.Fatalf("autopilot must not close the session")
	}
}

func TestJumpToClampsAndBumpsToken(t *testing.T) {
	m := NewMachine(twoSegments())

	before := m.PlayToken()
	if err := m.JumpTo(99); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if m.CurrentIndex() != 1 {
		t.Fatalf("jump should clamp to last index, got %d", m.CurrentIndex())
	}
	if m.PlayToken() != before+1 {
		t.Fatalf("jump must bump the play token")
	}

	seg, ok := m.Playing()
	if !ok || seg.Index != 1 {
		t.Fatalf("playing segment should follow the jump, got %+v", seg)
	}

	// Replay: same index, token still changes.
	_ = m.JumpTo(1)
	if m.PlayToken() != before+2 {
		t.Fatalf("replay jump must bump the token even when the index is unchanged")
	}

	_ = m.JumpTo(-5)
	if m.CurrentIndex() != 0 {
		t.Fatalf("negative jump should clamp to 0, got %d", m.CurrentIndex())
	}
}

func TestKeyBindings(t *testing.T) {
	m := NewMachine(twoSegments())

	if err := m.HandleKey(KeyEnter, false); err != nil {
		t.Fatalf("enter: %v", err)
	}
	if v, _ := m.Vote(0); v != models.VoteAccept {
		t.Fatalf("enter should accept, got %q", v)
	}

	if err := m.HandleKey(KeyArrowDown, false); err != nil {
		t.Fatalf("arrow down: %v", err)
	}
	if m.CurrentIndex() != 1 {
		t.Fatalf("arrow down should jump to 1, got %d", m.CurrentIndex())
	}

	if err := m.HandleKey(KeySpace, false); err != nil {
		t.Fatalf("space: %v", err)
	}
	if v, _ := m.Vote(1); v != models.VoteReject {
		t.Fatalf("space should reject, got %q", v)
	}

	if err := m.HandleKey(KeyArrowUp, false); err != nil {
		t.Fatalf("arrow up: %v", err)
	}
	if m.CurrentIndex() != 0 {
		t.Fatalf("arrow up should jump back to 0, got %d", m.CurrentIndex())
	}

	if err := m.HandleKey(KeyEscape, false); err != nil {
		t.Fatalf("escape: %v", err)
	}
	if m.Phase() != PhaseClosed {
		t.Fatalf("escape should close the session")
	}
}

func TestKeysSuppressedWhileTyping(t *testing.T) {
	m := NewMachine(twoSegments())

	if err := m.HandleKey(KeyEnter, true); err != nil {
		t.Fatalf("suppressed key returned error: %v", err)
	}
	if len(m.Votes()) != 0 {
		t.Fatalf("keys must be inert while a text input has focus")
	}
}

func TestCloseSummary(t *testing.T) {
	m := NewMachine(twoSegments())

	_ = m.Accept()
	_ = m.JumpTo(1)
	_ = m.Reject()

	summary, err := m.Close()
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(summary.Accepted) != 1 || summary.Accepted[0] != 0 {
		t.Errorf("accepted = %v, want [0]", summary.Accepted)
	}
	if len(summary.Rejected) != 1 || summary.Rejected[0] != 1 {
		t.Errorf("rejected = %v, want [1]", summary.Rejected)
	}
	if summary.AcceptedSeconds != 4.0 {
		t.Errorf("accepted seconds = %v, want 4.0", summary.AcceptedSeconds)
	}

	if err := m.Accept(); !errors.Is(err, ErrNotReviewing) {
		t.Errorf("voting after close should fail, got %v", err)
	}
}

func TestAcceptedSecondsUsesSuppliedDuration(t *testing.T) {
	m := NewMachine([]models.Segment{{Index: 3, Start: 1, End: 2, Duration: 0.8}})
	_ = m.Accept()
	summary, _ := m.Close()
	if summary.AcceptedSeconds != 0.8 {
		t.Fatalf("accepted seconds = %v, want supplied duration 0.8", summary.AcceptedSeconds)
	}
}

func TestSetSegmentsResets(t *testing.T) {
	m := NewMachine(twoSegments())
	_ = m.Accept()
	_ = m.JumpTo(1)
	tokenBefore := m.PlayToken()

	m.SetSegments([]models.Segment{{Index: 7, Start: 0, End: 2}})

	if m.CurrentIndex() != 0 {
		t.Errorf("cursor should reset to 0")
	}
	if len(m.Votes()) != 0 {
		t.Errorf("votes should be cleared")
	}
	if _, ok := m.Transcript(0); ok {
		t.Errorf("transcripts should be cleared")
	}
	if m.PlayToken() != tokenBefore+1 {
		t.Errorf("play token should bump exactly once on reset")
	}
	if m.Phase() != PhaseReviewing {
		t.Errorf("new non-empty list should resume reviewing")
	}
}

func TestVoteLookupSurvivesFiltering(t *testing.T) {
	segments := twoSegments()
	m := NewMachine(segments)
	_ = m.Accept()

	// An "accepted only" view reorders segments; identity lives on Index,
	// so the vote resolves the same from either view.
	filtered := []models.Segment{segments[1], segments[0]}
	if v, ok := m.Vote(filtered[1].Index); !ok || v != models.VoteAccept {
		t.Fatalf("vote lookup via reordered view = %q, want accept", v)
	}
	if _, ok := m.Vote(filtered[0].Index); ok {
		t.Fatalf("unvoted segment must stay pending regardless of view order")
	}
}

func TestConcurrentArrowKeysStayInRange(t *testing.T) {
	segments := []models.Segment{
		{Index: 0, Start: 0, End: 2},
		{Index: 1, Start: 2, End: 4},
		{Index: 2, Start: 4, End: 6},
	}
	m := NewMachine(segments)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		key := KeyArrowDown
		if i%2 == 0 {
			key = KeyArrowUp
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = m.HandleKey(key, false)
			}
		}(key)
	}
	wg.Wait()

	if idx := m.CurrentIndex(); idx < 0 || idx > 2 {
		t.Fatalf("cursor left the segment range: %d", idx)
	}
}
