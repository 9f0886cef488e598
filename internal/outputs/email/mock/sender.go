package mock

import (
	"context"
	"sync"

	"github.com/bakkerme/random-reddit/internal/outputs/email"
)

// Sender records messages instead of sending them. Err, when set, fails every send.
type Sender struct {
	Err error

	mu       sync.Mutex
	Messages []email.Message
}

func (s *Sender) Send(ctx context.Context, message email.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, message)
	return nil
}
