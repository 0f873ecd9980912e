package signalist

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/etnz/signalist/date"
	"github.com/etnz/signalist/metrics"
	"golang.org/x/sync/errgroup"
)

// MaxArticles is the maximum number of articles returned by GetNews.
const MaxArticles = 6

// LookbackDays is the number of days before today covered by company news.
const LookbackDays = 5

// NewsProvider is the source of raw articles.
type NewsProvider interface {
	// Configured returns a *ConfigurationError if the provider cannot be queried at all.
	Configured() error
	// CompanyNews returns the news about symbol published within window.
	CompanyNews(ctx context.Context, symbol string, window date.Range) ([]Article, error)
	// GeneralNews returns the general market headlines.
	GeneralNews(ctx context.Context) ([]Article, error)
}

// Aggregator selects the news for a list of symbols.
//
// An Aggregator holds no state between calls, it is safe for concurrent use.
type Aggregator struct {
	Provider NewsProvider
	// Now is the clock used to compute the lookback window. Defaults to time.Now.
	Now func() time.Time
	// Concurrency bounds the company news fetched in parallel. Defaults to 4.
	Concurrency int
	Logger      *slog.Logger
}

// NewAggregator returns an Aggregator on top of p.
func NewAggregator(p NewsProvider) *Aggregator {
	return &Aggregator{Provider: p, Now: time.Now, Concurrency: 4}
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}

func (a *Aggregator) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// GetNews returns at most MaxArticles articles about symbols, most recent first.
//
// Symbols are picked round-robin so that each one is represented. When no
// symbol yields any article, or when symbols is empty, the general market news
// are returned instead.
//
// A company news failure only removes that symbol from the selection. Any other
// failure is returned as a *NewsFetchError.
func (a *Aggregator) GetNews(ctx context.Context, symbols ...string) ([]NewsArticle, error) {
	news, err := a.getNews(ctx, symbols)
	if err != nil {
		a.logger().Error("failed to fetch news", "symbols", symbols, "error", err)
		return nil, &NewsFetchError{Err: err}
	}
	return news, nil
}

func (a *Aggregator) getNews(ctx context.Context, symbols []string) ([]NewsArticle, error) {
	if err := a.Provider.Configured(); err != nil {
		return nil, err
	}

	clean := CleanSymbols(symbols)
	if len(clean) > 0 {
		window := date.Trailing(date.Of(a.now()), LookbackDays)
		queues := a.fetchCompanyNews(ctx, clean, window)
		picked := roundRobin(clean, queues, MaxArticles)
		if len(picked) > 0 {
			sortByDatetime(picked)
			picked = capped(picked)
			metrics.RecordNews("symbols", len(picked))
			return picked, nil
		}
		a.logger().Info("no company news, falling back to general news", "symbols", clean, "window", window.String())
	}

	raw, err := a.Provider.GeneralNews(ctx)
	if err != nil {
		return nil, err
	}
	general := dedupe(normalizeAll(raw))
	sortByDatetime(general)
	general = capped(general)
	metrics.RecordNews("general", len(general))
	return general, nil
}

// fetchCompanyNews fetches each distinct symbol once and returns its valid
// articles, most recent first. Failing symbols map to an empty list.
func (a *Aggregator) fetchCompanyNews(ctx context.Context, symbols []string, window date.Range) map[string][]NewsArticle {
	queues := make(map[string][]NewsArticle, len(symbols))
	var mu sync.Mutex

	limit := a.Concurrency
	if limit <= 0 {
		limit = 4
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for _, symbol := range slices.Compact(slices.Sorted(slices.Values(symbols))) {
		g.Go(func() error {
			raw, err := a.Provider.CompanyNews(ctx, symbol, window)
			if err != nil {
				// not fatal: the symbol simply contributes nothing.
				metrics.SymbolFailures.Inc()
				a.logger().Warn("company news failed", "symbol", symbol, "error", err)
				raw = nil
			}
			news := normalizeAll(raw)
			sortByDatetime(news)

			mu.Lock()
			queues[symbol] = news
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return queues
}

// roundRobin picks up to rounds articles, one per round, cycling through symbols.
//
// In each round the queue of the current symbol is consumed until an unseen
// valid article is found. Consumed articles are never revisited. A round that
// finds nothing adds nothing.
func roundRobin(symbols []string, queues map[string][]NewsArticle, rounds int) []NewsArticle {
	picked := make([]NewsArticle, 0, rounds)
	seen := make(map[string]struct{})

	for round := 0; round < rounds; round++ {
		symbol := symbols[round%len(symbols)]
		queue := queues[symbol]
		for len(queue) > 0 {
			candidate := queue[0]
			queue = queue[1:]
			key := candidate.Key()
			if _, dup := seen[key]; dup || !candidate.Valid() {
				continue
			}
			seen[key] = struct{}{}
			picked = append(picked, candidate)
			break
		}
		queues[symbol] = queue
	}
	return picked
}

// normalizeAll normalizes raw and silently drops the invalid articles.
func normalizeAll(raw []Article) []NewsArticle {
	news := make([]NewsArticle, 0, len(raw))
	for _, r := range raw {
		n, err := r.Normalize()
		if err != nil {
			continue
		}
		news = append(news, n)
	}
	return news
}

// dedupe keeps the first article for each key, in order.
func dedupe(news []NewsArticle) []NewsArticle {
	seen := make(map[string]struct{}, len(news))
	res := make([]NewsArticle, 0, len(news))
	for _, n := range news {
		key := n.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		res = append(res, n)
	}
	return res
}

// sortByDatetime sorts news most recent first, keeping the order of equal datetimes.
func sortByDatetime(news []NewsArticle) {
	slices.SortStableFunc(news, func(a, b NewsArticle) int { return cmp.Compare(b.Datetime, a.Datetime) })
}

func capped(news []NewsArticle) []NewsArticle {
	if len(news) > MaxArticles {
		return news[:MaxArticles]
	}
	return news
}
