package finnhub

import (
	"context"

	"github.com/etnz/signalist"
	"github.com/etnz/signalist/date"
)

// CompanyNews implements signalist.NewsProvider.
func (c *Client) CompanyNews(ctx context.Context, symbol string, window date.Range) ([]signalist.Article, error) {
	params := query{{"symbol", symbol}, {"from", window.From.String()}, {"to", window.To.String()}}

	var articles []signalist.Article
	if err := c.jget(ctx, c.company, "company-news", params, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// GeneralNews implements signalist.NewsProvider.
func (c *Client) GeneralNews(ctx context.Context) ([]signalist.Article, error) {
	params := query{{"category", "general"}}

	var articles []signalist.Article
	if err := c.jget(ctx, c.general, "news", params, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
