// Package digest sends the daily news digest and the welcome emails.
package digest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/agent"
	"github.com/etnz/signalist/date"
	"github.com/etnz/signalist/mailer"
	"github.com/etnz/signalist/metrics"
	"golang.org/x/sync/errgroup"
)

// NewsSource selects the news of a list of symbols. *signalist.Aggregator implements it.
type NewsSource interface {
	GetNews(ctx context.Context, symbols ...string) ([]signalist.NewsArticle, error)
}

// Directory lists the recipients and their watchlists. *watchlist.Store implements it.
type Directory interface {
	UsersForNewsMail(ctx context.Context) ([]signalist.User, error)
	SymbolsByEmail(ctx context.Context, email string) []string
}

// Writer writes the AI generated texts. *agent.Writer implements it.
type Writer interface {
	SummarizeNews(ctx context.Context, articles []signalist.NewsArticle) (string, error)
	WelcomeIntro(ctx context.Context, p signalist.UserProfile) (string, error)
}

// Job sends the emails.
type Job struct {
	News   NewsSource
	Users  Directory
	Writer Writer
	Mailer mailer.Mailer
	From   string // mailer.DefaultFrom if empty

	Now         func() time.Time
	Concurrency int // users processed in parallel, defaults to 4
	Logger      *slog.Logger
}

// Result counts the outcome of a digest run.
type Result struct {
	Users  int
	Sent   int
	Failed int
}

// Delivery is the digest prepared for a user.
type Delivery struct {
	User     signalist.User
	Articles []signalist.NewsArticle
	// Summary is empty when the news or the summary could not be produced.
	Summary string
}

func (j *Job) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

func (j *Job) from() string {
	if j.From == "" {
		return mailer.DefaultFrom
	}
	return j.From
}

func (j *Job) today() date.Date {
	if j.Now == nil {
		return date.Today()
	}
	return date.Of(j.Now())
}

// Run sends the daily digest to every subscribed user.
//
// Users are processed independently: a failure for one user is logged and
// counted, it never prevents the others from receiving their digest.
func (j *Job) Run(ctx context.Context) (Result, error) {
	users, err := j.Users.UsersForNewsMail(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Users: len(users)}
	if len(users) == 0 {
		j.logger().Info("no users found for news email")
		return res, nil
	}
	day := j.today()

	var mu sync.Mutex
	limit := j.Concurrency
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for _, user := range users {
		g.Go(func() error {
			ok := j.deliver(ctx, day, user)
			mu.Lock()
			defer mu.Unlock()
			if ok {
				res.Sent++
			} else {
				res.Failed++
			}
			return nil
		})
	}
	g.Wait()
	j.logger().Info("daily news digest done", "users", res.Users, "sent", res.Sent, "failed", res.Failed)
	return res, nil
}

func (j *Job) deliver(ctx context.Context, day date.Date, user signalist.User) bool {
	d := j.Prepare(ctx, user)
	if d.Summary == "" {
		metrics.RecordDigest("failed")
		return false
	}
	if err := j.Mailer.Send(ctx, mailer.NewsSummary(j.from(), user.Email, day, d.Summary)); err != nil {
		j.logger().Error("cannot send news email", "email", user.Email, "error", err)
		metrics.RecordDigest("failed")
		return false
	}
	metrics.RecordDigest("sent")
	return true
}

// Prepare selects the news of user and summarizes them.
//
// The user's watchlist news come first. If they are empty the general market
// news are used instead. Any failure leaves the Summary empty.
func (j *Job) Prepare(ctx context.Context, user signalist.User) Delivery {
	d := Delivery{User: user}
	log := j.logger().With("email", user.Email)

	symbols := j.Users.SymbolsByEmail(ctx, user.Email)
	articles, err := j.News.GetNews(ctx, symbols...)
	if err != nil {
		log.Error("cannot prepare user news", "error", err)
		return d
	}
	articles = capped(articles)
	if len(articles) == 0 {
		articles, err = j.News.GetNews(ctx)
		if err != nil {
			log.Error("cannot prepare general news", "error", err)
			return d
		}
		articles = capped(articles)
	}
	d.Articles = articles

	summary, err := j.Writer.SummarizeNews(ctx, articles)
	if err != nil {
		log.Error("cannot summarize news", "error", err)
		return d
	}
	d.Summary = summary
	return d
}

// Welcome sends the welcome email to a new user.
//
// A failure of the model is not fatal: the default intro is used instead.
func (j *Job) Welcome(ctx context.Context, p signalist.UserProfile) error {
	intro, err := j.Writer.WelcomeIntro(ctx, p)
	if err != nil {
		j.logger().Warn("cannot personalize welcome intro", "email", p.Email, "error", err)
		intro = agent.WelcomeFallback
	}
	if err := j.Mailer.Send(ctx, mailer.Welcome(j.from(), p.Email, p.Name, intro)); err != nil {
		return err
	}
	j.logger().Info("welcome email sent", "email", p.Email)
	return nil
}

func capped(articles []signalist.NewsArticle) []signalist.NewsArticle {
	if len(articles) > signalist.MaxArticles {
		return articles[:signalist.MaxArticles]
	}
	return articles
}
