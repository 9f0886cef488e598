package mock

import (
	"context"
	"sync"

	"github.com/bakkerme/random-reddit/internal/sources/reddit"
)

// Transport replays canned responses. Handler, when set, takes precedence.
// Calls on a done context are recorded and fail with the context's error.
// Once Responses is exhausted the last entry repeats.
type Transport struct {
	Responses []reddit.Response
	Errs      []error
	Handler   func(endpoint string) (reddit.Response, error)

	mu    sync.Mutex
	Calls []string
}

func (t *Transport) Get(ctx context.Context, endpoint string) (reddit.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.Calls)
	t.Calls = append(t.Calls, endpoint)
	if err := ctx.Err(); err != nil {
		return reddit.Response{}, err
	}
	if t.Handler != nil {
		return t.Handler(endpoint)
	}

	var err error
	if n < len(t.Errs) {
		err = t.Errs[n]
	}
	if len(t.Responses) == 0 {
		return reddit.Response{}, err
	}
	if n >= len(t.Responses) {
		n = len(t.Responses) - 1
	}
	return t.Responses[n], err
}

func (t *Transport) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}
