package reddit

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/random-reddit/internal/logging"
)

// Client fetches random posts and images from one or more subreddits.
// It holds no per-call state; concurrent use is safe when the Transport is.
type Client struct {
	transport Transport
	logger    *slog.Logger
	tracer    trace.Tracer
	filter    Filter

	mu   sync.Mutex
	rand *rand.Rand
}

type Option func(*Client)

// WithRand makes random selection deterministic.
func WithRand(r *rand.Rand) Option {
	return func(c *Client) {
		if r != nil {
			c.rand = r
		}
	}
}

// WithPostFilter restricts which listing children GetPost may return.
func WithPostFilter(filter Filter) Option {
	return func(c *Client) {
		c.filter = filter
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

func NewClient(logger *slog.Logger, transport Transport, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		transport: transport,
		logger:    logger,
		tracer:    otel.Tracer("github.com/bakkerme/random-reddit/internal/sources/reddit"),
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func pick[T any](c *Client, items []T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PickRandom(c.rand, items)
}

// log prefers a logger carried by ctx so callers' correlation fields reach fetch logs.
func (c *Client) log(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, c.logger)
}
