package renderer

import (
	"time"

	"github.com/etnz/signalist"
)

// RenderStocks renders search results as a table.
func RenderStocks(query string, stocks []signalist.Stock) string {
	rows := make([]signalist.Stock, len(stocks))
	for i, s := range stocks {
		s.Name = cell(s.Name)
		rows[i] = s
	}
	data := struct {
		Query  string
		Stocks []signalist.Stock
	}{query, rows}
	return renderTemplate("stocks", "stocks.md", nil, data)
}

// QuoteView is a quote formatted for display.
type QuoteView struct {
	Symbol        string
	Price         Money
	Change        Money
	PercentChange Percent
	Open          Money
	High          Money
	Low           Money
	PreviousClose Money
	AsOf          string
}

// NewQuoteView formats q in currency, the time is displayed in loc.
func NewQuoteView(q signalist.Quote, currency string, loc *time.Location) QuoteView {
	v := QuoteView{
		Symbol:        q.Symbol,
		Price:         NewMoneyFromFloat(q.Current, currency),
		Change:        NewMoneyFromFloat(q.Change, currency),
		PercentChange: Percent(q.PercentChange),
		Open:          NewMoneyFromFloat(q.Open, currency),
		High:          NewMoneyFromFloat(q.High, currency),
		Low:           NewMoneyFromFloat(q.Low, currency),
		PreviousClose: NewMoneyFromFloat(q.PreviousClose, currency),
	}
	if q.Timestamp > 0 {
		v.AsOf = q.Time().In(loc).Format("Mon Jan 2 15:04 MST")
	}
	return v
}

// RenderQuote renders a single quote.
func RenderQuote(v QuoteView) string {
	return renderTemplate("quote", "quote.md", nil, v)
}

// WatchlistRow is a watched symbol with its latest quote, if any.
type WatchlistRow struct {
	Symbol  string
	Company string
	Added   string
	Quote   *QuoteView
}

// NewWatchlist prepares items for rendering. quotes may miss some symbols.
func NewWatchlist(items []signalist.WatchlistItem, quotes map[string]signalist.Quote, currency string, loc *time.Location) []WatchlistRow {
	rows := make([]WatchlistRow, 0, len(items))
	for _, item := range items {
		row := WatchlistRow{
			Symbol:  item.Symbol,
			Company: cell(item.Company),
			Added:   item.AddedAt.In(loc).Format("2006-01-02"),
		}
		if q, ok := quotes[item.Symbol]; ok {
			v := NewQuoteView(q, currency, loc)
			row.Quote = &v
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderWatchlist renders the watchlist as a table.
func RenderWatchlist(rows []WatchlistRow) string {
	return renderTemplate("watchlist", "watchlist.md", nil, rows)
}
