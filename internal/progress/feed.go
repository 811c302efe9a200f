package progress

import (
	"sync"
	"time"

	"github.com/ppotepa/streamcraft-tts/internal/models"
)

// EventKind classifies feed entries.
type EventKind string

const (
	EventKindProgress EventKind = "progress"
	EventKindLog      EventKind = "log"
)

// Event is one sequenced progress or log entry from a step run. Every
// event carries the generation of the run that produced it; the feed
// drops events whose generation is not the current one.
type Event struct {
	Seq        int64         `json:"seq"`
	Timestamp  time.Time     `json:"timestamp"`
	Step       models.StepID `json:"step"`
	Generation string        `json:"generation"`
	Kind       EventKind     `json:"kind"`
	Stage      Stage         `json:"stage"`
	Value      float64       `json:"value"`
	Line       string        `json:"line,omitempty"`
}

// Feed is a bounded in-memory event buffer with incremental reads, plus
// the weighted overall percentage of the current run.
type Feed struct {
	mu         sync.RWMutex
	nextSeq    int64
	maxEvents  int
	events     []Event
	step       models.StepID
	generation string
	weights    Weights
	raw        map[Stage]float64
}

// NewFeed creates a feed keeping at most maxEvents entries.
func NewFeed(maxEvents int) *Feed {
	if maxEvents <= 0 {
		maxEvents = 500
	}
	return &Feed{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		raw:       make(map[Stage]float64),
	}
}

// BeginRun fences the feed onto a new run: raw sub-stage state resets and
// any event still carrying an older generation is discarded on arrival.
func (f *Feed) BeginRun(step models.StepID, generation string, weights Weights) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.step = step
	f.generation = generation
	f.weights = weights
	f.raw = make(map[Stage]float64)
}

// Publish appends one event, assigning sequence and timestamp. Events
// from superseded runs are dropped and reported as such.
func (f *Feed) Publish(event Event) (Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if event.Generation != f.generation || f.generation == "" {
		return Event{}, false
	}

	f.nextSeq++
	event.Seq = f.nextSeq
	event.Step = f.step
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Kind == EventKindProgress {
		f.raw[event.Stage] = event.Value
	}

	f.events = append(f.events, event)
	if len(f.events) > f.maxEvents {
		trim := len(f.events) - f.maxEvents
		f.events = append([]Event(nil), f.events[trim:]...)
	}
	return event, true
}

// Overall returns the weighted overall percentage of the current run.
func (f *Feed) Overall() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Overall(f.weights, f.raw)
}

// Since returns events with sequence strictly greater than seq.
func (f *Feed) Since(seq int64) []Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.events) == 0 {
		return nil
	}
	out := make([]Event, 0, len(f.events))
	for _, event := range f.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
