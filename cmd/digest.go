package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/mailer"
	"github.com/google/subcommands"
)

// printer is a mailer that prints the messages instead of sending them.
type printer struct{}

func (printer) Send(ctx context.Context, m mailer.Message) error {
	fmt.Printf("To: %s\nSubject: %s\n\n", m.To, m.Subject)
	printMarkdown(m.Markdown)
	return nil
}

// mailerFor returns the outbox, or the printer in dry run.
func mailerFor(dryRun bool) mailer.Mailer {
	if dryRun {
		return printer{}
	}
	return newOutbox()
}

type digestCmd struct {
	dryRun bool
}

func (*digestCmd) Name() string     { return "digest" }
func (*digestCmd) Synopsis() string { return "send the daily news digest to every user" }
func (*digestCmd) Usage() string {
	return `signalist digest [-dry-run]

  Summarizes the news of the watchlist of every user and writes the emails
  into the outbox. With -dry-run, the emails are printed instead.
`
}

func (c *digestCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the emails instead of writing them to the outbox.")
}

func (c *digestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := newFinnhub()
	if err != nil {
		return fail("invalid configuration", err)
	}
	store, pool, err := openWatchlist(ctx)
	if err != nil {
		return fail("cannot open the watchlist", err)
	}
	defer pool.Close()

	job, err := newJob(ctx, newAggregator(client), store, mailerFor(c.dryRun))
	if err != nil {
		return fail("invalid configuration", err)
	}
	res, err := job.Run(ctx)
	if err != nil {
		return fail("cannot send the digest", err)
	}
	fmt.Fprintf(os.Stderr, "%d users, %d sent, %d failed\n", res.Users, res.Sent, res.Failed)
	if res.Failed > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type welcomeCmd struct {
	profile signalist.UserProfile
	dryRun  bool
}

func (*welcomeCmd) Name() string     { return "welcome" }
func (*welcomeCmd) Synopsis() string { return "send the welcome email to a new user" }
func (*welcomeCmd) Usage() string {
	return `signalist welcome -email EMAIL -name NAME [-country C] [-goals G] [-risk R] [-industry I] [-dry-run]

  Writes a welcome email personalized from the user profile.
`
}

func (c *welcomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile.Email, "email", "", "Email of the user.")
	f.StringVar(&c.profile.Name, "name", "", "Name of the user.")
	f.StringVar(&c.profile.Country, "country", "", "Country of the user.")
	f.StringVar(&c.profile.InvestmentGoals, "goals", "", "Investment goals of the user.")
	f.StringVar(&c.profile.RiskTolerance, "risk", "", "Risk tolerance of the user.")
	f.StringVar(&c.profile.PreferredIndustry, "industry", "", "Preferred industry of the user.")
	f.BoolVar(&c.dryRun, "dry-run", false, "Print the email instead of writing it to the outbox.")
}

func (c *welcomeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.profile.Email == "" || c.profile.Name == "" {
		fmt.Fprintln(os.Stderr, "Error: -email and -name are required.")
		return subcommands.ExitUsageError
	}
	job, err := newJob(ctx, nil, nil, mailerFor(c.dryRun))
	if err != nil {
		return fail("invalid configuration", err)
	}
	if err := job.Welcome(ctx, c.profile); err != nil {
		return fail("cannot send the welcome email", err)
	}
	return subcommands.ExitSuccess
}
