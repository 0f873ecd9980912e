// Package cmd implements the signalist command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/agent"
	"github.com/etnz/signalist/digest"
	"github.com/etnz/signalist/finnhub"
	"github.com/etnz/signalist/httpcache"
	"github.com/etnz/signalist/mailer"
	"github.com/etnz/signalist/watchlist"
	"github.com/google/subcommands"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&newsCmd{}, "market")
	c.Register(&searchCmd{}, "market")
	c.Register(&quoteCmd{}, "market")

	c.Register(&watchlistCmd{}, "users")
	c.Register(&welcomeCmd{}, "users")

	c.Register(&digestCmd{}, "jobs")
	c.Register(&serveCmd{}, "jobs")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	finnhubAPIKey = flag.String("finnhub-api-key", "", "Finnhub API key. Takes precedence over the FINNHUB_API_KEY environment variable. You can get one at https://finnhub.io/")
	databaseURL   = flag.String("database-url", "", "PostgreSQL url of the users and watchlists. Takes precedence over DATABASE_URL.")
	cacheKind     = flag.String("cache", "", "HTTP cache: disk, memory, redis or none. Takes precedence over SIGNALIST_CACHE. Default disk.")
	redisURL      = flag.String("redis-url", "", "Redis url of the redis cache. Takes precedence over REDIS_URL.")
	outboxDir     = flag.String("outbox", "", "Directory of the outgoing emails. Takes precedence over SIGNALIST_OUTBOX. Default outbox.")
	mailFrom      = flag.String("mail-from", "", "Sender of the emails. Takes precedence over SIGNALIST_MAIL_FROM.")
	logLevel      = flag.String("log-level", "", "Log level: debug, info, warn or error. Takes precedence over LOG_LEVEL. Default info.")
)

// setting returns flagValue if set, otherwise the first non empty environment variable of envs, otherwise def.
func setting(flagValue, def string, envs ...string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	for _, env := range envs {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	return def
}

// Setup configures the default logger. It must be called after the flags are parsed.
func Setup() error {
	level, err := parseLevel(setting(*logLevel, "info", "LOG_LEVEL"))
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, &signalist.ConfigurationError{Setting: "LOG_LEVEL", Reason: err.Error()}
	}
	return level, nil
}

// newCacheStore returns the configured HTTP cache, nil for none.
func newCacheStore() (httpcache.Store, error) {
	switch kind := setting(*cacheKind, "disk", "SIGNALIST_CACHE"); kind {
	case "disk":
		return &httpcache.DiskStore{Dir: filepath.Join(os.TempDir(), "signalist")}, nil
	case "memory":
		return httpcache.NewMemoryStore(1024, finnhub.ProfileTTL), nil
	case "redis":
		return httpcache.NewRedisStore(setting(*redisURL, "redis://localhost:6379/0", "REDIS_URL"))
	case "none":
		return nil, nil
	default:
		return nil, &signalist.ConfigurationError{Setting: "SIGNALIST_CACHE", Reason: fmt.Sprintf("unknown cache %q", kind)}
	}
}

// newFinnhub returns the Finnhub client. A missing key is reported by the first call.
func newFinnhub() (*finnhub.Client, error) {
	store, err := newCacheStore()
	if err != nil {
		return nil, err
	}
	key := setting(*finnhubAPIKey, "", "FINNHUB_API_KEY", "NEXT_PUBLIC_FINNHUB_API_KEY")
	opts := []finnhub.Option{finnhub.WithLogger(slog.Default())}
	if store != nil {
		opts = append(opts, finnhub.WithStore(store))
	}
	return finnhub.New(key, opts...), nil
}

func newAggregator(p signalist.NewsProvider) *signalist.Aggregator {
	agg := signalist.NewAggregator(p)
	agg.Logger = slog.Default()
	return agg
}

// openWatchlist connects to the database. The returned pool must be closed.
func openWatchlist(ctx context.Context) (*watchlist.Store, *pgxpool.Pool, error) {
	store, pool, err := watchlist.Open(ctx, setting(*databaseURL, "", "DATABASE_URL"))
	if err != nil {
		return nil, nil, err
	}
	return store.WithLogger(slog.Default()), pool, nil
}

func newOutbox() *mailer.Outbox {
	return &mailer.Outbox{Dir: setting(*outboxDir, "outbox", "SIGNALIST_OUTBOX"), Logger: slog.Default()}
}

// newJob returns the digest job. users may be nil when only welcome emails are sent.
func newJob(ctx context.Context, news digest.NewsSource, users digest.Directory, m mailer.Mailer) (*digest.Job, error) {
	g, err := agent.NewGenerator(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot create the Gemini client: %w", err)
	}
	return &digest.Job{
		News:   news,
		Users:  users,
		Writer: agent.NewWriter(g),
		Mailer: m,
		From:   setting(*mailFrom, mailer.DefaultFrom, "SIGNALIST_MAIL_FROM"),
		Now:    time.Now,
		Logger: slog.Default(),
	}, nil
}

// fail prints err on stderr and returns ExitFailure.
func fail(format string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+": %v\n", err)
	return subcommands.ExitFailure
}
