package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/renderer"
	"github.com/etnz/signalist/watchlist"
	"github.com/google/subcommands"
)

// watchlistCmd is the top-level command for watchlist operations.
type watchlistCmd struct{}

func (*watchlistCmd) Name() string     { return "watchlist" }
func (*watchlistCmd) Synopsis() string { return "manage the watchlist of a user" }
func (*watchlistCmd) Usage() string {
	return `watchlist <subcommand> <options>

Manage the watchlist of a user: add, remove, list.
`
}
func (c *watchlistCmd) SetFlags(f *flag.FlagSet) {}

func (c *watchlistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "watchlist")
	commander.Register(&watchlistAddCmd{}, "")
	commander.Register(&watchlistRemoveCmd{}, "")
	commander.Register(&watchlistListCmd{}, "")
	return commander.Execute(ctx, args...)
}

// withUser opens the watchlist and resolves the user of email for run.
func withUser(ctx context.Context, email string, run func(*watchlist.Store, signalist.User) subcommands.ExitStatus) subcommands.ExitStatus {
	if email == "" {
		fmt.Fprintln(os.Stderr, "Error: -email is required.")
		return subcommands.ExitUsageError
	}
	store, pool, err := openWatchlist(ctx)
	if err != nil {
		return fail("cannot open the watchlist", err)
	}
	defer pool.Close()
	u, err := store.UserByEmail(ctx, email)
	if err != nil {
		return fail("cannot find user", err)
	}
	return run(store, u)
}

type watchlistAddCmd struct {
	email string
}

func (*watchlistAddCmd) Name() string     { return "add" }
func (*watchlistAddCmd) Synopsis() string { return "add a symbol to a watchlist" }
func (*watchlistAddCmd) Usage() string {
	return `signalist watchlist add -email EMAIL SYMBOL [COMPANY...]
`
}

func (c *watchlistAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the user.")
}

func (c *watchlistAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a symbol is required.")
		return subcommands.ExitUsageError
	}
	symbol, company := f.Arg(0), strings.Join(f.Args()[1:], " ")
	return withUser(ctx, c.email, func(store *watchlist.Store, u signalist.User) subcommands.ExitStatus {
		item, err := store.Add(ctx, u.ID, symbol, company)
		if errors.Is(err, watchlist.ErrDuplicate) {
			fmt.Fprintf(os.Stderr, "%s is already in the watchlist of %s\n", strings.ToUpper(symbol), c.email)
			return subcommands.ExitFailure
		}
		if err != nil {
			return fail("cannot add symbol", err)
		}
		fmt.Printf("Added %s (%s) to the watchlist of %s\n", item.Symbol, item.Company, c.email)
		return subcommands.ExitSuccess
	})
}

type watchlistRemoveCmd struct {
	email string
}

func (*watchlistRemoveCmd) Name() string     { return "remove" }
func (*watchlistRemoveCmd) Synopsis() string { return "remove symbols from a watchlist" }
func (*watchlistRemoveCmd) Usage() string {
	return `signalist watchlist remove -email EMAIL SYMBOL...
`
}

func (c *watchlistRemoveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the user.")
}

func (c *watchlistRemoveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a symbol is required.")
		return subcommands.ExitUsageError
	}
	return withUser(ctx, c.email, func(store *watchlist.Store, u signalist.User) subcommands.ExitStatus {
		for _, symbol := range f.Args() {
			removed, err := store.Remove(ctx, u.ID, symbol)
			if err != nil {
				return fail("cannot remove symbol", err)
			}
			if !removed {
				fmt.Printf("%s was not in the watchlist\n", strings.ToUpper(symbol))
				continue
			}
			fmt.Printf("Removed %s\n", strings.ToUpper(symbol))
		}
		return subcommands.ExitSuccess
	})
}

type watchlistListCmd struct {
	email    string
	quotes   bool
	currency string
}

func (*watchlistListCmd) Name() string     { return "list" }
func (*watchlistListCmd) Synopsis() string { return "list the watchlist of a user" }
func (*watchlistListCmd) Usage() string {
	return `signalist watchlist list -email EMAIL [-quotes=false]
`
}

func (c *watchlistListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", "", "Email of the user.")
	f.BoolVar(&c.quotes, "quotes", true, "Show the latest quote of each symbol.")
	f.StringVar(&c.currency, "currency", "USD", "Currency of the prices.")
}

func (c *watchlistListCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withUser(ctx, c.email, func(store *watchlist.Store, u signalist.User) subcommands.ExitStatus {
		items, err := store.List(ctx, u.ID)
		if err != nil {
			return fail("cannot list the watchlist", err)
		}
		quotes := make(map[string]signalist.Quote)
		if c.quotes && len(items) > 0 {
			client, err := newFinnhub()
			if err != nil {
				return fail("invalid configuration", err)
			}
			for _, item := range items {
				q, err := client.Quote(ctx, item.Symbol)
				if err != nil {
					// the list is still useful without prices.
					fmt.Fprintf(os.Stderr, "Warning: cannot quote %s: %v\n", item.Symbol, err)
					continue
				}
				quotes[item.Symbol] = q
			}
		}
		printMarkdown(renderer.RenderWatchlist(renderer.NewWatchlist(items, quotes, c.currency, time.Local)))
		return subcommands.ExitSuccess
	})
}
