package signalist

import (
	"context"
	"sync"
	"time"

	"github.com/etnz/signalist/date"
)

// today is the fixed clock of the tests: the window is 2026-10-13..2026-10-18.
var today = time.Date(2026, 10, 18, 9, 30, 0, 0, time.Local)

func clock() time.Time { return today }

// fakeProvider serves canned articles and records the calls it received.
type fakeProvider struct {
	configErr  error
	company    map[string][]Article
	companyErr map[string]error
	general    []Article
	generalErr error

	mu           sync.Mutex
	companyCalls []string
	windows      []date.Range
	generalCalls int
}

func (p *fakeProvider) Configured() error { return p.configErr }

func (p *fakeProvider) CompanyNews(_ context.Context, symbol string, window date.Range) ([]Article, error) {
	p.mu.Lock()
	p.companyCalls = append(p.companyCalls, symbol)
	p.windows = append(p.windows, window)
	p.mu.Unlock()
	if err := p.companyErr[symbol]; err != nil {
		return nil, err
	}
	return p.company[symbol], nil
}

func (p *fakeProvider) GeneralNews(context.Context) ([]Article, error) {
	p.mu.Lock()
	p.generalCalls++
	p.mu.Unlock()
	return p.general, p.generalErr
}

func newTestAggregator(p *fakeProvider) *Aggregator {
	a := NewAggregator(p)
	a.Now = clock
	return a
}

// art is a helper for tests to create a raw article with an id, a headline and a datetime.
func art(id int64, headline string, datetime float64) Article {
	return Article{ID: &id, Headline: &headline, Datetime: &datetime}
}

// ptr is a helper for tests to build optional fields.
func ptr[T any](v T) *T { return &v }
