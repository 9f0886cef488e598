package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bakkerme/random-reddit/internal/config"
	"github.com/bakkerme/random-reddit/internal/delivery"
	"github.com/bakkerme/random-reddit/internal/logging"
	"github.com/bakkerme/random-reddit/internal/observability/otelx"
	"github.com/bakkerme/random-reddit/internal/outputs/email/smtp"
	"github.com/bakkerme/random-reddit/internal/rules"
	"github.com/bakkerme/random-reddit/internal/runner"
	"github.com/bakkerme/random-reddit/internal/sources/reddit"
	"github.com/bakkerme/random-reddit/internal/trigger"
)

func main() {
	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "path to a YAML document (optional)")
	subreddits := flag.String("subreddit", "", "comma separated subreddit names, overrides the document")
	mode := flag.String("mode", "", "post, image or id")
	postID := flag.String("id", "", "post id for -mode id")
	retryLimit := flag.Int("retry-limit", 0, "attempt budget per request (default 10)")
	watch := flag.Bool("watch", false, "run on the document schedule instead of once")
	flag.Parse()

	level, err := logging.ParseLevel(env.LogLevel)
	if err != nil {
		log.Printf("%v, using %s", err, level)
	}
	logger := logging.New(os.Stderr, level, env.LogFormat)
	slog.SetDefault(logger)

	doc, err := loadDocument(*configPath)
	if err != nil {
		log.Fatalf("failed to load document: %v", err)
	}
	if *subreddits != "" {
		doc.Subreddits = splitSubreddits(*subreddits)
	}
	if *retryLimit > 0 {
		doc.RetryLimit = *retryLimit
	}
	if *mode != "" {
		doc.Mode = strings.ToLower(*mode)
	}
	if env.PostFilter != "" && doc.Filter == "" {
		doc.Filter = env.PostFilter
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to init otel: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	client, err := newClient(logger, env, doc.Filter)
	if err != nil {
		log.Fatalf("failed to create reddit client: %v", err)
	}

	if doc.Mode == "id" {
		if err := printPostByID(ctx, client, *postID, doc); err != nil {
			log.Fatalf("get post by id: %v", err)
		}
		return
	}
	if err := doc.Validate(); err != nil {
		log.Fatalf("invalid document: %v", err)
	}
	if err := doc.CheckOutputs(env); err != nil {
		log.Fatalf("invalid document: %v", err)
	}

	var deliverer runner.Deliverer
	if doc.Email != nil {
		sender, err := smtp.NewSender(env.SMTP)
		if err != nil {
			log.Fatalf("failed to configure email output: %v", err)
		}
		deliverer = delivery.New(sender, *doc.Email)
	}
	r := runner.New(logger, client, *doc, deliverer, os.Stdout)

	if !*watch {
		if _, err := r.RunOnce(ctx); err != nil {
			log.Fatalf("run failed: %v", err)
		}
		return
	}

	cron, err := trigger.NewCron(doc.Schedule, doc.Timezone)
	if err != nil {
		log.Fatalf("invalid schedule: %v", err)
	}
	ticks, err := cron.Start(ctx)
	if err != nil {
		log.Fatalf("failed to start schedule: %v", err)
	}
	logger.Info("watching", slog.String("schedule", doc.Schedule), slog.Any("subreddits", doc.Subreddits))
	if err := r.Start(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("runner stopped: %v", err)
	}
}

func newClient(logger *slog.Logger, env config.EnvConfig, filter string) (*reddit.Client, error) {
	transport, err := reddit.NewTransport(logger, reddit.TransportConfig{
		ClientID:           env.Reddit.ClientID,
		ClientSecret:       env.Reddit.ClientSecret,
		Username:           env.Reddit.Username,
		Password:           env.Reddit.Password,
		UserAgent:          env.Reddit.UserAgent,
		Timeout:            env.Reddit.HTTPTimeout,
		RetryOnWait:        env.Reddit.RetryOnWait,
		ServerErrorRetries: env.Reddit.ServerErrorRetries,
		RetryDelay:         env.Reddit.RetryDelay,
		MaxRateLimitWait:   env.Reddit.MaxRateLimitWait,
		LogRequests:        env.Reddit.LogRequests,
	})
	if err != nil {
		return nil, err
	}

	var opts []reddit.Option
	if filter != "" {
		rule, err := rules.Compile(filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reddit.WithPostFilter(rule))
	}
	return reddit.NewClient(logger, transport, opts...), nil
}

func printPostByID(ctx context.Context, client *reddit.Client, id string, doc *config.Document) error {
	if id == "" || len(doc.Subreddits) != 1 {
		return fmt.Errorf("-mode id needs -id and exactly one -subreddit")
	}
	post, err := client.GetPostByID(ctx, id, doc.Subreddits[0], doc.RetryLimit)
	if err != nil {
		return err
	}
	if post == nil {
		return fmt.Errorf("post %s not found in r/%s", id, doc.Subreddits[0])
	}
	fmt.Printf("%s\n%s\n%s\n", post.Title, post.URL, post.Permalink)
	return nil
}

func loadDocument(path string) (*config.Document, error) {
	if path == "" {
		return &config.Document{Mode: config.ModeImage}, nil
	}
	return config.LoadDocument(path)
}

func splitSubreddits(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimPrefix(strings.TrimSpace(part), "r/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
