package wizard

import "errors"

var (
	ErrNoOpenJob       = errors.New("no job is open")
	ErrJobNotFound     = errors.New("job not found")
	ErrNoReviewSession = errors.New("no review session")
	ErrNoSegments      = errors.New("no segments available for review")
)
