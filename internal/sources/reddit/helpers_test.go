package reddit_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/rand"
	"strings"
	"testing"

	"github.com/bakkerme/random-reddit/internal/sources/reddit"
	"github.com/bakkerme/random-reddit/internal/sources/reddit/mock"
)

type logBuffer struct {
	bytes.Buffer
}

func (b *logBuffer) count(level string) int {
	return strings.Count(b.String(), "level="+level)
}

func newTestClient(t *testing.T, transport *mock.Transport, opts ...reddit.Option) (*reddit.Client, *logBuffer) {
	t.Helper()
	buf := &logBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]reddit.Option{reddit.WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return reddit.NewClient(logger, transport, opts...), buf
}

func listingJSON(t *testing.T, posts ...map[string]any) json.RawMessage {
	t.Helper()
	children := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		children = append(children, map[string]any{"kind": "t3", "data": p})
	}
	raw, err := json.Marshal(map[string]any{
		"kind": "Listing",
		"data": map[string]any{"children": children},
	})
	if err != nil {
		t.Fatalf("marshal listing: %v", err)
	}
	return raw
}

func wrapped(t *testing.T, listings ...json.RawMessage) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(listings)
	if err != nil {
		t.Fatalf("marshal listings: %v", err)
	}
	return raw
}

func ok(body json.RawMessage) reddit.Response {
	return reddit.Response{StatusCode: 200, Body: body}
}
