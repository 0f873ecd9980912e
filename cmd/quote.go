package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/signalist/renderer"
	"github.com/google/subcommands"
)

type quoteCmd struct {
	currency string
}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "show the latest price of symbols" }
func (*quoteCmd) Usage() string {
	return `signalist quote [-currency CODE] SYMBOL...

  Shows the real time quote of each symbol. Quotes are never cached.
`
}

func (c *quoteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "USD", "Currency of the prices.")
}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a symbol is required.")
		return subcommands.ExitUsageError
	}
	client, err := newFinnhub()
	if err != nil {
		return fail("invalid configuration", err)
	}

	var b strings.Builder
	for _, symbol := range f.Args() {
		q, err := client.Quote(ctx, symbol)
		if err != nil {
			return fail("cannot quote "+symbol, err)
		}
		b.WriteString(renderer.RenderQuote(renderer.NewQuoteView(q, c.currency, time.Local)))
		b.WriteString("\n")
	}
	printMarkdown(b.String())
	return subcommands.ExitSuccess
}
