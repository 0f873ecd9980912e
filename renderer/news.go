package renderer

import (
	"strings"
	"time"

	"github.com/etnz/signalist"
)

// NewsItem is an article ready to be rendered.
type NewsItem struct {
	Headline  string
	URL       string
	Source    string
	Published string
	Related   string
	Summary   string
}

// News is a titled list of articles.
type News struct {
	Title string
	Items []NewsItem
}

// NewNews prepares articles for rendering, publication times are displayed in loc.
func NewNews(title string, articles []signalist.NewsArticle, loc *time.Location) *News {
	n := &News{Title: title}
	for _, a := range articles {
		source := a.Source
		if source == "" {
			source = "Unknown source"
		}
		n.Items = append(n.Items, NewsItem{
			Headline:  cell(a.Headline),
			URL:       a.URL,
			Source:    source,
			Published: a.Time().In(loc).Format("Jan 2, 15:04"),
			Related:   strings.Join(a.RelatedSymbols(), ", "),
			Summary:   strings.TrimSpace(a.Summary),
		})
	}
	return n
}

// RenderNews renders n to markdown.
func RenderNews(n *News) string {
	return renderTemplate("news", "news.md", map[string]string{"news_article": "news_article.md"}, n)
}
