package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/signalist/digest"
	"github.com/etnz/signalist/server"
	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"
)

type serveCmd struct {
	addr     string
	schedule string
	dryRun   bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the HTTP API and schedule the daily digest" }
func (*serveCmd) Usage() string {
	return `signalist serve [-addr :8080] [-schedule "0 12 * * *"]

  Serves the HTTP API and sends the daily news digest on schedule.
  An empty -schedule disables the digest.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", ":8080", "Address to listen on.")
	f.StringVar(&c.schedule, "schedule", digest.Daily, "Cron schedule of the daily digest, in local time.")
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the emails instead of writing them to the outbox.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newFinnhub()
	if err != nil {
		return fail("invalid configuration", err)
	}
	store, pool, err := openWatchlist(ctx)
	if err != nil {
		return fail("cannot open the watchlist", err)
	}
	defer pool.Close()

	agg := newAggregator(client)
	job, err := newJob(ctx, agg, store, mailerFor(c.dryRun))
	if err != nil {
		return fail("invalid configuration", err)
	}
	if c.schedule != "" {
		if _, err := digest.Next(c.schedule, time.Now()); err != nil {
			return fail("invalid schedule", err)
		}
	}

	srv := server.New(server.Config{
		News:      agg,
		Stocks:    client,
		Watchlist: store,
		Events:    job,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(c.addr) })
	if c.schedule != "" {
		g.Go(func() error { return job.Schedule(ctx, c.schedule, time.Local) })
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return fail("server stopped", err)
	}
	return subcommands.ExitSuccess
}
