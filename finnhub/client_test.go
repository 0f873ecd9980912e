package finnhub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/date"
	"github.com/etnz/signalist/httpcache"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"
)

const testKey = "test-key"

// fakeFinnhub serves canned responses per path and records the queries.
type fakeFinnhub struct {
	mu       sync.Mutex
	requests []string // path?query, token excluded
	raw      []string // raw queries, as sent
	status   map[string]int
	bodies   map[string]string
}

func newFake(t *testing.T) (*fakeFinnhub, *Client) {
	t.Helper()
	f := &fakeFinnhub{status: map[string]int{}, bodies: map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := New(testKey,
		WithBaseURL(srv.URL),
		WithStore(httpcache.NewMemoryStore(64, time.Hour)),
		WithLimiter(rate.NewLimiter(rate.Inf, 1)),
	)
	return f, c
}

func (f *fakeFinnhub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("token") != testKey {
		http.Error(w, `{"error":"Invalid API key"}`, http.StatusUnauthorized)
		return
	}
	q.Del("token")
	f.mu.Lock()
	f.requests = append(f.requests, r.URL.Path+"?"+q.Encode())
	f.raw = append(f.raw, r.URL.RawQuery)
	status, body := f.status[r.URL.Path], f.bodies[r.URL.Path]
	f.mu.Unlock()

	if body == "" && strings.HasPrefix(r.URL.Path, "/stock/profile2") {
		symbol := q.Get("symbol")
		body = fmt.Sprintf(`{"ticker":%q,"name":"%s Inc","exchange":"NASDAQ NMS - GLOBAL MARKET"}`, symbol, symbol)
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (f *fakeFinnhub) calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, path+"?") {
			n++
		}
	}
	return n
}

func TestConfigured(t *testing.T) {
	c := New("  ")
	err := c.Configured()
	var cerr *signalist.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Configured() = %v, want a ConfigurationError", err)
	}
	if cerr.Setting != "FINNHUB_API_KEY" {
		t.Errorf("Configured() setting = %q, want FINNHUB_API_KEY", cerr.Setting)
	}
	if _, err := c.GeneralNews(context.Background()); !errors.As(err, &cerr) {
		t.Errorf("GeneralNews() = %v, want a ConfigurationError", err)
	}
	if err := New(testKey).Configured(); err != nil {
		t.Errorf("Configured() unexpected error: %v", err)
	}
}

func TestCompanyNews(t *testing.T) {
	f, c := newFake(t)
	f.bodies["/company-news"] = `[{"id":1,"headline":"a","datetime":100},{"id":"x","headline":"b","datetime":50}]`

	window := date.Trailing(date.New(2026, time.October, 18), 5)
	got, err := c.CompanyNews(context.Background(), "AAPL", window)
	if err != nil {
		t.Fatalf("CompanyNews() unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].ID != nil || *got[1].Headline != "b" {
		t.Errorf("CompanyNews() = %+v, want 2 articles, the second without id", got)
	}
	want := []string{"/company-news?from=2026-10-13&symbol=AAPL&to=2026-10-18"}
	if diff := cmp.Diff(want, f.requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
	wantRaw := []string{"symbol=AAPL&from=2026-10-13&to=2026-10-18&token=" + testKey}
	if diff := cmp.Diff(wantRaw, f.raw); diff != "" {
		t.Errorf("query order mismatch (-want +got):\n%s", diff)
	}
}

func TestGeneralNews_MalformedElement(t *testing.T) {
	f, c := newFake(t)
	f.bodies["/news"] = `[5, "x", [], {"id":1,"headline":"kept","datetime":10}]`

	news, err := signalist.NewAggregator(c).GetNews(context.Background())
	if err != nil {
		t.Fatalf("GetNews() unexpected error: %v", err)
	}
	if len(news) != 1 || news[0].Headline != "kept" {
		t.Errorf("GetNews() = %+v, want only the valid article", news)
	}
	if f.raw[0] != "category=general&token="+testKey {
		t.Errorf("raw query = %q", f.raw[0])
	}
}

func TestGeneralNews_Cached(t *testing.T) {
	f, c := newFake(t)
	f.bodies["/news"] = `[{"id":7,"headline":"market","datetime":1}]`

	for i := 0; i < 3; i++ {
		got, err := c.GeneralNews(context.Background())
		if err != nil {
			t.Fatalf("GeneralNews() unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("GeneralNews() returned %d articles, want 1", len(got))
		}
	}
	if n := f.calls("/news"); n != 1 {
		t.Errorf("server received %d general news requests, want 1", n)
	}
	if f.requests[0] != "/news?category=general" {
		t.Errorf("request = %q, want /news?category=general", f.requests[0])
	}
}

func TestHTTPError(t *testing.T) {
	f, c := newFake(t)
	f.status["/news"] = http.StatusTooManyRequests
	f.bodies["/news"] = `{"error":"API limit reached"}`

	_, err := c.GeneralNews(context.Background())
	var herr *signalist.HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("GeneralNews() error = %v, want an HTTPError", err)
	}
	if got, want := err.Error(), "HTTP 429: Too Many Requests"; got != want {
		t.Errorf("GeneralNews() error = %q, want %q", got, want)
	}
	if strings.Contains(herr.URL, testKey) {
		t.Errorf("HTTPError.URL = %q leaks the token", herr.URL)
	}

	// failures are not cached.
	c.GeneralNews(context.Background())
	if n := f.calls("/news"); n != 2 {
		t.Errorf("server received %d requests, want 2", n)
	}
}

func TestQuote_NotCached(t *testing.T) {
	f, c := newFake(t)
	f.bodies["/quote"] = `{"c":261.74,"d":-1.23,"dp":-0.4678,"h":263.5,"l":259.1,"o":262,"pc":262.97,"t":1760731200}`

	var q signalist.Quote
	var err error
	for i := 0; i < 2; i++ {
		q, err = c.Quote(context.Background(), " aapl ")
		if err != nil {
			t.Fatalf("Quote() unexpected error: %v", err)
		}
	}
	want := signalist.Quote{Symbol: "AAPL", Current: 261.74, Change: -1.23, PercentChange: -0.4678, High: 263.5, Low: 259.1, Open: 262, PreviousClose: 262.97, Timestamp: 1760731200}
	if diff := cmp.Diff(want, q); diff != "" {
		t.Errorf("Quote() mismatch (-want +got):\n%s", diff)
	}
	if n := f.calls("/quote"); n != 2 {
		t.Errorf("server received %d quote requests, want 2", n)
	}
}

func TestSearchStocks(t *testing.T) {
	f, c := newFake(t)
	var results []string
	for i := 0; i < 20; i++ {
		results = append(results, fmt.Sprintf(`{"description":"CO %d","displaySymbol":"S%d.L","symbol":"s%d.l","type":""}`, i, i, i))
	}
	f.bodies["/search"] = `{"count":20,"result":[` + strings.Join(results, ",") + `]}`

	got, err := c.SearchStocks(context.Background(), " co ")
	if err != nil {
		t.Fatalf("SearchStocks() unexpected error: %v", err)
	}
	if len(got) != MaxSearchResults {
		t.Fatalf("SearchStocks() returned %d stocks, want %d", len(got), MaxSearchResults)
	}
	want := signalist.Stock{Symbol: "S0.L", Name: "CO 0", Exchange: "L", Type: "Stock"}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Errorf("SearchStocks()[0] mismatch (-want +got):\n%s", diff)
	}
	if f.requests[0] != "/search?q=co" {
		t.Errorf("request = %q, want /search?q=co", f.requests[0])
	}
}

func TestSearchStocks_Popular(t *testing.T) {
	f, c := newFake(t)

	got, err := c.SearchStocks(context.Background(), "")
	if err != nil {
		t.Fatalf("SearchStocks() unexpected error: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("SearchStocks() returned %d stocks, want 10", len(got))
	}
	for i, s := range got {
		if s.Symbol != PopularSymbols[i] || s.Name != PopularSymbols[i]+" Inc" {
			t.Errorf("SearchStocks()[%d] = %+v, want %s", i, s, PopularSymbols[i])
		}
	}
	if n := f.calls("/search"); n != 0 {
		t.Errorf("server received %d search requests, want 0", n)
	}
	if n := f.calls("/stock/profile2"); n != 10 {
		t.Errorf("server received %d profile requests, want 10", n)
	}
}

func TestAggregator(t *testing.T) {
	f, c := newFake(t)
	f.bodies["/company-news"] = `[{"id":1,"headline":"a","datetime":100},{"id":2,"headline":"b","datetime":200}]`

	agg := signalist.NewAggregator(c)
	agg.Now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.Local) }
	got, err := agg.GetNews(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetNews() unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Errorf("GetNews() = %+v, want articles 2 then 1", got)
	}
	if n := f.calls("/news"); n != 0 {
		t.Errorf("server received %d general news requests, want 0", n)
	}
}
