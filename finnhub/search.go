package finnhub

import (
	"context"
	"strings"
	"sync"

	"github.com/etnz/signalist"
	"golang.org/x/sync/errgroup"
)

// MaxSearchResults is the maximum number of stocks returned by SearchStocks.
const MaxSearchResults = 15

// PopularSymbols are suggested when the search query is empty.
var PopularSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX", "ORCL", "CRM",
	"ADBE", "INTC", "AMD", "PYPL", "UBER", "SHOP", "SPOT", "COIN",
}

// Profile is the company profile of a symbol.
type Profile struct {
	Ticker    string  `json:"ticker"`
	Name      string  `json:"name"`
	Exchange  string  `json:"exchange"`
	Country   string  `json:"country"`
	Currency  string  `json:"currency"`
	Industry  string  `json:"finnhubIndustry"`
	IPO       string  `json:"ipo"`
	MarketCap float64 `json:"marketCapitalization"`
	Logo      string  `json:"logo"`
	WebURL    string  `json:"weburl"`
}

// Profile returns the company profile of symbol.
func (c *Client) Profile(ctx context.Context, symbol string) (Profile, error) {
	params := query{{"symbol", strings.ToUpper(strings.TrimSpace(symbol))}}

	var p Profile
	err := c.jget(ctx, c.profile, "stock/profile2", params, &p)
	return p, err
}

// searchResponse matches the Finnhub search endpoint.
type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Description   string `json:"description"`
		DisplaySymbol string `json:"displaySymbol"`
		Symbol        string `json:"symbol"`
		Type          string `json:"type"`
	} `json:"result"`
}

// searchCandidate is a stock found by a search, before its watchlist status is known.
type searchCandidate struct {
	symbol, name, exchange, kind string
}

func (s searchCandidate) stock() signalist.Stock {
	return signalist.Stock{Symbol: s.symbol, Name: s.name, Exchange: s.exchange, Type: s.kind}
}

// SearchStocks returns up to MaxSearchResults stocks matching query.
//
// An empty query returns the profiles of the first ten PopularSymbols. The
// InWatchlist status is left to the caller.
func (c *Client) SearchStocks(ctx context.Context, query string) ([]signalist.Stock, error) {
	query = strings.TrimSpace(query)
	var candidates []searchCandidate
	var err error
	if query == "" {
		candidates, err = c.popular(ctx, 10)
	} else {
		candidates, err = c.searchSymbols(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) > MaxSearchResults {
		candidates = candidates[:MaxSearchResults]
	}
	stocks := make([]signalist.Stock, 0, len(candidates))
	for _, s := range candidates {
		stocks = append(stocks, s.stock())
	}
	return stocks, nil
}

func (c *Client) searchSymbols(ctx context.Context, q string) ([]searchCandidate, error) {
	params := query{{"q", q}}

	var resp searchResponse
	if err := c.jget(ctx, c.search, "search", params, &resp); err != nil {
		return nil, err
	}
	var res []searchCandidate
	for _, r := range resp.Result {
		symbol := strings.ToUpper(strings.TrimSpace(r.Symbol))
		if symbol == "" {
			continue
		}
		display := r.DisplaySymbol
		if display == "" {
			display = symbol
		}
		res = append(res, searchCandidate{
			symbol:   symbol,
			name:     firstNonEmpty(r.Description, symbol),
			exchange: exchangeOf(display),
			kind:     firstNonEmpty(r.Type, "Stock"),
		})
	}
	return res, nil
}

// popular returns the profiles of the first n PopularSymbols, in order.
// Symbols whose profile cannot be fetched are skipped, unless credentials are missing.
func (c *Client) popular(ctx context.Context, n int) ([]searchCandidate, error) {
	if err := c.Configured(); err != nil {
		return nil, err
	}
	symbols := PopularSymbols[:min(n, len(PopularSymbols))]
	profiles := make([]*Profile, len(symbols))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(4)
	for i, symbol := range symbols {
		g.Go(func() error {
			p, err := c.Profile(ctx, symbol)
			if err != nil {
				c.logger.Warn("profile failed", "symbol", symbol, "error", err)
				return nil
			}
			mu.Lock()
			profiles[i] = &p
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	var res []searchCandidate
	for i, p := range profiles {
		if p == nil {
			continue
		}
		res = append(res, searchCandidate{
			symbol:   symbols[i],
			name:     firstNonEmpty(p.Name, symbols[i]),
			exchange: firstNonEmpty(p.Exchange, "US"),
			kind:     "Common Stock",
		})
	}
	return res, nil
}

// exchangeOf returns the exchange suffix of a display symbol, e.g. "L" for "VOD.L", or "US".
func exchangeOf(display string) string {
	if i := strings.LastIndexByte(display, '.'); i >= 0 && i < len(display)-1 {
		return display[i+1:]
	}
	return "US"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
