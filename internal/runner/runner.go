package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bakkerme/random-reddit/internal/config"
	"github.com/bakkerme/random-reddit/internal/delivery"
	"github.com/bakkerme/random-reddit/internal/logging"
	"github.com/bakkerme/random-reddit/internal/sources/reddit"
)

// Source is the part of *reddit.Client the runner needs.
type Source interface {
	GetPost(ctx context.Context, subreddits []string, retryLimit int) (*reddit.Post, error)
	GetImage(ctx context.Context, subreddits []string, retryLimit int) (string, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, pick delivery.Pick) error
}

type Runner struct {
	logger    *slog.Logger
	source    Source
	doc       config.Document
	deliverer Deliverer
	out       io.Writer
}

// New builds a runner. deliverer and out may be nil.
func New(logger *slog.Logger, source Source, doc config.Document, deliverer Deliverer, out io.Writer) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger, source: source, doc: doc, deliverer: deliverer, out: out}
}

func (r *Runner) RunOnce(ctx context.Context) (delivery.Pick, error) {
	runID := uuid.NewString()
	logger := r.logger.With(slog.String("run_id", runID))
	ctx = logging.WithLogger(ctx, logger)
	started := time.Now()

	pick := delivery.Pick{Subreddits: r.doc.Subreddits}
	switch r.doc.Mode {
	case config.ModePost:
		post, err := r.source.GetPost(ctx, r.doc.Subreddits, r.doc.RetryLimit)
		if err != nil {
			return pick, fmt.Errorf("get post: %w", err)
		}
		if post == nil {
			logger.Warn("no post found", slog.Any("subreddits", r.doc.Subreddits))
			return pick, nil
		}
		pick.Post = post
	default:
		image, err := r.source.GetImage(ctx, r.doc.Subreddits, r.doc.RetryLimit)
		if err != nil {
			return pick, fmt.Errorf("get image: %w", err)
		}
		pick.ImageURL = image
	}

	if r.out != nil {
		if err := writePick(r.out, pick); err != nil {
			return pick, err
		}
	}
	if r.deliverer != nil {
		if err := r.deliverer.Deliver(ctx, pick); err != nil {
			return pick, err
		}
	}
	logger.Info("run finished", slog.Duration("took", time.Since(started)))
	return pick, nil
}

// Start runs once per tick until ticks is closed or ctx is done. Failed runs are
// logged and do not stop the loop.
func (r *Runner) Start(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("run failed", slog.Any("error", err))
			}
		}
	}
}

func writePick(w io.Writer, pick delivery.Pick) error {
	var err error
	switch {
	case pick.Post != nil:
		_, err = fmt.Fprintf(w, "%s\n%s\n%s\n", pick.Post.Title, pick.Post.URL, pick.Post.Permalink)
	case pick.ImageURL != "":
		_, err = fmt.Fprintln(w, pick.ImageURL)
	}
	return err
}
