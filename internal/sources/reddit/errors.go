package reddit

import "errors"

var (
	// ErrAccessDenied is returned when Reddit refuses the request. It is never retried.
	ErrAccessDenied = errors.New("access denied to reddit api")
	// ErrExceededRetries matches every *ExceededRetriesError.
	ErrExceededRetries = errors.New("request retries limit exceeded")
	// ErrNoValidMedia is returned for gallery posts without a single valid media entry.
	ErrNoValidMedia = errors.New("gallery has no valid media")
	ErrNoSubreddits = errors.New("no subreddits configured")
)

// ExceededRetriesError reports an exhausted retry budget.
type ExceededRetriesError struct {
	Message string
}

func (e *ExceededRetriesError) Error() string {
	if e.Message == "" {
		return ErrExceededRetries.Error()
	}
	return e.Message
}

func (e *ExceededRetriesError) Is(target error) bool {
	return target == ErrExceededRetries
}
