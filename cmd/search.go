package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/signalist/renderer"
	"github.com/google/subcommands"
)

type searchCmd struct {
	email string
}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search stocks by name or symbol" }
func (*searchCmd) Usage() string {
	return `signalist search [-email EMAIL] [QUERY...]

  Searches up to 15 stocks. Without a query, lists popular stocks.
  With -email, marks the stocks in the watchlist of that user.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Mark the stocks in the watchlist of this user.")
}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := newFinnhub()
	if err != nil {
		return fail("invalid configuration", err)
	}
	query := strings.Join(f.Args(), " ")
	stocks, err := client.SearchStocks(ctx, query)
	if err != nil {
		return fail("cannot search stocks", err)
	}

	if c.email != "" {
		store, pool, err := openWatchlist(ctx)
		if err != nil {
			return fail("cannot open the watchlist", err)
		}
		defer pool.Close()
		watched := make(map[string]bool)
		for _, symbol := range store.SymbolsByEmail(ctx, c.email) {
			watched[symbol] = true
		}
		for i := range stocks {
			stocks[i].InWatchlist = watched[stocks[i].Symbol]
		}
	}

	printMarkdown(renderer.RenderStocks(query, stocks))
	return subcommands.ExitSuccess
}
