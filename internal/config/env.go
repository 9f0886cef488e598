package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	PostFilter string
	Reddit     RedditEnvConfig
	OTel       OTelEnvConfig
	SMTP       SMTPEnvConfig
}

type RedditEnvConfig struct {
	HTTPTimeout        time.Duration
	UserAgent          string
	ClientID           string
	ClientSecret       string
	Username           string
	Password           string
	RetryOnWait        bool
	ServerErrorRetries int
	RetryDelay         time.Duration
	MaxRateLimitWait   time.Duration
	LogRequests        bool
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

type SMTPEnvConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	TLSMode            string
	InsecureSkipVerify bool
}

// Enabled reports whether enough is configured to deliver email.
func (c SMTPEnvConfig) Enabled() bool {
	return c.Host != ""
}

func LoadEnv() EnvConfig {
	return loadEnv(os.Getenv)
}

func loadEnv(getenv func(string) string) EnvConfig {
	e := lookup(getenv)
	otlpEndpoint := e.str("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	return EnvConfig{
		ConfigPath: e.str("RANDOMREDDIT_CONFIG", ""),
		LogLevel:   e.str("LOG_LEVEL", "warn"),
		LogFormat:  strings.ToLower(e.str("LOG_FORMAT", "text")),
		PostFilter: e.str("POST_FILTER", ""),
		Reddit: RedditEnvConfig{
			HTTPTimeout:        e.duration("REDDIT_HTTP_TIMEOUT", 10*time.Second),
			UserAgent:          e.str("REDDIT_USER_AGENT", ""),
			ClientID:           e.str("REDDIT_CLIENT_ID", ""),
			ClientSecret:       e.str("REDDIT_CLIENT_SECRET", ""),
			Username:           e.str("REDDIT_USERNAME", ""),
			Password:           e.str("REDDIT_PASSWORD", ""),
			RetryOnWait:        e.boolean("REDDIT_RETRY_ON_WAIT", true),
			ServerErrorRetries: e.integer("REDDIT_SERVER_ERROR_RETRIES", 5),
			RetryDelay:         e.duration("REDDIT_RETRY_DELAY", 5*time.Second),
			MaxRateLimitWait:   e.duration("REDDIT_MAX_RATE_LIMIT_WAIT", time.Minute),
			LogRequests:        e.boolean("REDDIT_LOG_REQUESTS", false),
		},
		OTel: OTelEnvConfig{
			Enabled:     e.boolean("OTEL_ENABLED", false),
			ServiceName: e.str("OTEL_SERVICE_NAME", "random-reddit"),
			Endpoint:    otlpEndpoint,
			Protocol:    strings.ToLower(e.str("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			Headers:     parseHeaders(e.str("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    e.boolean("OTEL_EXPORTER_OTLP_INSECURE", isPlaintextEndpoint(otlpEndpoint)),
			SampleRatio: max(0, min(1, e.float("OTEL_TRACES_SAMPLE_RATIO", 1.0))),
		},
		SMTP: SMTPEnvConfig{
			Host:               e.str("SMTP_HOST", ""),
			Port:               e.integer("SMTP_PORT", 587),
			User:               e.str("SMTP_USER", ""),
			Password:           e.str("SMTP_PASSWORD", ""),
			TLSMode:            e.str("SMTP_TLS_MODE", ""),
			InsecureSkipVerify: e.boolean("SMTP_INSECURE_SKIP_VERIFY", false),
		},
	}
}

// lookup reads trimmed values; unset, blank and unparsable values all yield the fallback.
type lookup func(string) string

func (l lookup) str(key, fallback string) string {
	if v := strings.TrimSpace(l(key)); v != "" {
		return v
	}
	return fallback
}

func (l lookup) boolean(key string, fallback bool) bool {
	v := l.str(key, "")
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (l lookup) integer(key string, fallback int) int {
	i, err := strconv.Atoi(l.str(key, ""))
	if err != nil {
		return fallback
	}
	return i
}

func (l lookup) float(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(l.str(key, ""), 64)
	if err != nil {
		return fallback
	}
	return f
}

// duration accepts Go durations ("90s") and bare integers as seconds ("5").
func (l lookup) duration(key string, fallback time.Duration) time.Duration {
	v := l.str(key, "")
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return fallback
}

// parseHeaders reads "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS.
func parseHeaders(raw string) map[string]string {
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if ok && k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isPlaintextEndpoint(endpoint string) bool {
	if endpoint == "" {
		return true
	}
	if u, err := url.Parse(endpoint); err == nil && strings.Contains(endpoint, "://") {
		return u.Scheme == "http"
	}
	host, _, _ := strings.Cut(endpoint, ":")
	return host == "localhost" || host == "127.0.0.1"
}
