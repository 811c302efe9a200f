package engine

import (
	"errors"
	"fmt"
)

// ErrorKind maps an engine failure onto the step that surfaced it.
type ErrorKind string

const (
	KindMetadata      ErrorKind = "metadata"
	KindExtraction    ErrorKind = "extraction"
	KindSanitize      ErrorKind = "sanitize"
	KindTranscription ErrorKind = "transcription"
	KindTraining      ErrorKind = "training"
	KindSynthesis     ErrorKind = "synthesis"
	KindAPI           ErrorKind = "api"
)

// Error is a failure reported by (or while reaching) the processing
// engine. It is surfaced as the owning step's message and never escalated
// to a global handler.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("engine %s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("engine %s error: %s", e.Kind, e.Message)
}

// IsKind reports whether err is an engine error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
