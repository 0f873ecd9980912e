package finnhub

import (
	"context"
	"strings"

	"github.com/etnz/signalist"
)

// Quote returns the latest quote of symbol. Quotes are never cached.
func (c *Client) Quote(ctx context.Context, symbol string) (signalist.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	params := query{{"symbol", symbol}}

	var q signalist.Quote
	if err := c.jget(ctx, c.quote, "quote", params, &q); err != nil {
		return signalist.Quote{}, err
	}
	q.Symbol = symbol
	return q, nil
}
