package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/bakkerme/random-reddit/internal/retry"
	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
)

// TransportConfig holds Reddit credentials and the transport's own retry policy.
// That policy is independent of the retry limits passed to Client methods.
type TransportConfig struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	UserAgent    string
	Timeout      time.Duration
	// BaseURL overrides the API host, mostly for tests.
	BaseURL string

	RetryOnWait        bool
	ServerErrorRetries int
	RetryDelay         time.Duration
	MaxRateLimitWait   time.Duration
	LogRequests        bool
}

// DefaultTransportConfig mirrors the defaults Reddit wrappers commonly ship with:
// wait out rate limits and retry server errors 5 times, 5 seconds apart.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		Timeout:            10 * time.Second,
		RetryOnWait:        true,
		ServerErrorRetries: 5,
		RetryDelay:         5 * time.Second,
		MaxRateLimitWait:   time.Minute,
	}
}

// DefaultUserAgent follows Reddit's "<platform>:<app id>:<version> (by /u/<user>)" convention.
func DefaultUserAgent(username string) string {
	if username == "" {
		username = "random-reddit"
	}
	return fmt.Sprintf("%s:random-reddit:%s (by /u/%s)", runtime.GOOS, Version, username)
}

type RedditTransport struct {
	client *goreddit.Client
	config TransportConfig
	logger *slog.Logger
}

var errServer = errors.New("reddit server error")

func NewTransport(logger *slog.Logger, config TransportConfig) (*RedditTransport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent(config.Username)
	}
	if config.ServerErrorRetries < 0 {
		config.ServerErrorRetries = 0
	}

	opts := []goreddit.Opt{
		goreddit.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
		goreddit.WithUserAgent(config.UserAgent),
	}
	if config.BaseURL != "" {
		opts = append(opts, goreddit.WithBaseURL(config.BaseURL))
	}

	var (
		client *goreddit.Client
		err    error
	)
	if config.ClientID != "" && config.ClientSecret != "" && config.Username != "" && config.Password != "" {
		logger.Info("Using authenticated Reddit client", slog.String("clientID", config.ClientID))
		client, err = goreddit.NewClient(goreddit.Credentials{
			ID:       config.ClientID,
			Secret:   config.ClientSecret,
			Username: config.Username,
			Password: config.Password,
		}, opts...)
	} else {
		logger.Info("Using readonly Reddit client")
		client, err = goreddit.NewReadonlyClient(opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}
	return &RedditTransport{client: client, config: config, logger: logger}, nil
}

// Get performs a GET, retrying server errors and rate limits per the config.
// A 403 is retried once; if it repeats, Get returns a zero Response and no error.
func (t *RedditTransport) Get(ctx context.Context, endpoint string) (Response, error) {
	forbidden := 0
	for {
		resp, err := t.getWithRetry(ctx, endpoint)
		if err != nil {
			return Response{}, err
		}
		if resp.StatusCode != http.StatusForbidden {
			return resp, nil
		}
		forbidden++
		if forbidden >= 2 {
			t.logger.Debug("reddit answered 403 twice", slog.String("endpoint", endpoint))
			return Response{}, nil
		}
	}
}

func (t *RedditTransport) getWithRetry(ctx context.Context, endpoint string) (Response, error) {
	var out Response
	cfg := retry.Config{
		Attempts:  t.config.ServerErrorRetries + 1,
		BaseDelay: t.config.RetryDelay,
		MaxDelay:  max(t.config.RetryDelay, t.config.MaxRateLimitWait),
		Retryable: func(err error) bool {
			var rateErr *goreddit.RateLimitError
			if errors.As(err, &rateErr) {
				return t.config.RetryOnWait
			}
			return errors.Is(err, errServer)
		},
	}
	err := retry.Do(ctx, cfg, func() error {
		resp, err := t.do(ctx, endpoint)
		out = resp
		return err
	})
	if err != nil && errors.Is(err, errServer) {
		// server errors that outlived the policy are still an answer the caller classifies
		return out, nil
	}
	return out, err
}

func (t *RedditTransport) do(ctx context.Context, endpoint string) (Response, error) {
	path := strings.TrimPrefix(endpoint, "/")
	req, err := t.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return Response{}, fmt.Errorf("build request %s: %w", endpoint, err)
	}

	var body json.RawMessage
	resp, err := t.client.Do(ctx, req, &body)
	if t.config.LogRequests {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.logger.Debug("reddit request", slog.String("endpoint", endpoint), slog.Int("status", status))
	}
	if err != nil {
		var rateErr *goreddit.RateLimitError
		if errors.As(err, &rateErr) {
			return Response{}, retry.After(err, time.Until(rateErr.Rate.Reset))
		}
		if resp == nil {
			return Response{}, err
		}
		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return Response{StatusCode: resp.StatusCode}, fmt.Errorf("%w: %s", errServer, err)
		case resp.StatusCode < http.StatusBadRequest:
			// a success status with an unreadable body is a failed request, not an empty listing
			return Response{}, fmt.Errorf("read %s (status %d): %w", endpoint, resp.StatusCode, err)
		}
		return Response{StatusCode: resp.StatusCode}, nil
	}
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}
