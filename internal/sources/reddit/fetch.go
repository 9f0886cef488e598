package reddit

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type outcome int

const (
	outcomeTransient outcome = iota
	outcomeOK
	outcomeDenied
)

func (o outcome) String() string {
	switch o {
	case outcomeOK:
		return "ok"
	case outcomeDenied:
		return "denied"
	default:
		return "transient"
	}
}

func classify(resp Response, err error) outcome {
	if err != nil {
		return outcomeTransient
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return outcomeOK
	case 0, http.StatusForbidden:
		return outcomeDenied
	default:
		return outcomeTransient
	}
}

// fetch GETs endpoint until it answers 200, making at most retryLimit attempts.
// Permission errors end the loop at once since the transport has already retried them.
func (c *Client) fetch(ctx context.Context, endpoint string, retryLimit int) (Response, error) {
	if retryLimit <= 0 {
		retryLimit = DefaultRetryLimit
	}

	ctx, span := c.tracer.Start(ctx, "reddit.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("reddit.endpoint", endpoint),
		attribute.Int("reddit.retry_limit", retryLimit),
	)

	logger := c.log(ctx)
	retries := 0
	for retries < retryLimit {
		logger.Debug("GET", slog.String("endpoint", endpoint), slog.Int("retries", retries))

		resp, err := c.transport.Get(ctx, endpoint)
		if err != nil {
			logger.Debug("GET failed", slog.String("endpoint", endpoint), slog.Any("error", err))
		}

		switch classify(resp, err) {
		case outcomeOK:
			span.SetAttributes(attribute.Int("reddit.attempts", retries+1))
			return resp, nil
		case outcomeDenied:
			span.SetAttributes(attribute.Int("reddit.attempts", retries+1))
			span.SetStatus(codes.Error, ErrAccessDenied.Error())
			return Response{}, ErrAccessDenied
		}

		retries++
		if retries != retryLimit {
			logger.Warn("GET failed, retrying",
				slog.String("endpoint", endpoint),
				slog.Int("status", resp.StatusCode),
				slog.Int("retries", retries),
			)
		}
	}

	logger.Error("GET exceeded retry limit", slog.String("endpoint", endpoint), slog.Int("retry_limit", retryLimit))
	span.SetAttributes(attribute.Int("reddit.attempts", retries))
	span.SetStatus(codes.Error, ErrExceededRetries.Error())
	return Response{}, &ExceededRetriesError{}
}
