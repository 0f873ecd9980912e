package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/etnz/signalist/renderer"
	"github.com/google/subcommands"
)

type newsCmd struct {
	json bool
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "show the latest news of symbols" }
func (*newsCmd) Usage() string {
	return `signalist news [-json] [SYMBOL...]

  Shows at most 6 recent articles about the symbols, one symbol at a time.
  Without symbols, or when they have no news, shows the general market news.
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "Print the articles as JSON.")
}

func (c *newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := newFinnhub()
	if err != nil {
		return fail("invalid configuration", err)
	}
	news, err := newAggregator(client).GetNews(ctx, f.Args()...)
	if err != nil {
		return fail("cannot get news", errors.Unwrap(err))
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(news); err != nil {
			return fail("cannot encode news", err)
		}
		return subcommands.ExitSuccess
	}

	title := "Market news"
	if f.NArg() > 0 {
		title = "News for " + strings.ToUpper(strings.Join(f.Args(), ", "))
	}
	printMarkdown(renderer.RenderNews(renderer.NewNews(title, news, time.Local)))
	return subcommands.ExitSuccess
}
