package signalist

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Article is a news article as a provider returns it. Every field is optional.
//
// Decoding is tolerant: a property with an unexpected JSON type is left nil,
// and an element that is not an object decodes as an empty Article, instead of
// failing the whole feed.
type Article struct {
	ID       *int64   `json:"id,omitempty"`
	Headline *string  `json:"headline,omitempty"`
	Summary  *string  `json:"summary,omitempty"`
	Source   *string  `json:"source,omitempty"`
	URL      *string  `json:"url,omitempty"`
	Datetime *float64 `json:"datetime,omitempty"` // UNIX epoch seconds
	Category *string  `json:"category,omitempty"`
	Related  *string  `json:"related,omitempty"`
	Image    *string  `json:"image,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Article) UnmarshalJSON(data []byte) error {
	var jobj map[string]any
	if err := json.Unmarshal(data, &jobj); err != nil {
		// not an object: an empty article, dropped by Normalize.
		*a = Article{}
		return nil
	}
	*a = Article{
		Headline: jstring(jobj, "headline"),
		Summary:  jstring(jobj, "summary"),
		Source:   jstring(jobj, "source"),
		URL:      jstring(jobj, "url"),
		Datetime: jnumber(jobj, "datetime"),
		Category: jstring(jobj, "category"),
		Related:  jstring(jobj, "related"),
		Image:    jstring(jobj, "image"),
	}
	if v := jnumber(jobj, "id"); v != nil && *v == math.Trunc(*v) {
		id := int64(*v)
		a.ID = &id
	}
	return nil
}

func jstring(jobj map[string]any, name string) *string {
	if s, ok := jobj[name].(string); ok {
		return &s
	}
	return nil
}

func jnumber(jobj map[string]any, name string) *float64 {
	if f, ok := jobj[name].(float64); ok {
		return &f
	}
	return nil
}

// NewsArticle is a normalized Article: absent fields are set to their zero value,
// except Image which stays optional.
type NewsArticle struct {
	ID       int64   `json:"id"`
	Headline string  `json:"headline"`
	Summary  string  `json:"summary"`
	Source   string  `json:"source"`
	URL      string  `json:"url"`
	Datetime int64   `json:"datetime"`
	Category string  `json:"category"`
	Related  string  `json:"related"`
	Image    *string `json:"image,omitempty"`
}

// Normalize returns the NewsArticle for a, or a *ValidationError if a cannot be
// identified (no id, url nor headline) or dated (no numeric datetime).
func (a Article) Normalize() (NewsArticle, error) {
	n := NewsArticle{
		ID:       deref(a.ID),
		Headline: deref(a.Headline),
		Summary:  deref(a.Summary),
		Source:   deref(a.Source),
		URL:      deref(a.URL),
		Category: deref(a.Category),
		Related:  deref(a.Related),
		Image:    a.Image,
	}
	if !n.identified() {
		return n, &ValidationError{Field: "id", Reason: "no id, url or headline"}
	}
	if a.Datetime == nil || math.IsNaN(*a.Datetime) || math.IsInf(*a.Datetime, 0) {
		return n, &ValidationError{Field: "datetime", Reason: "missing or not a number"}
	}
	n.Datetime = int64(*a.Datetime)
	return n, nil
}

func deref[T any](p *T) (v T) {
	if p != nil {
		v = *p
	}
	return v
}

func (n NewsArticle) identified() bool {
	return n.ID > 0 || n.URL != "" || n.Headline != ""
}

// Valid reports whether n can be told apart from other articles.
func (n NewsArticle) Valid() bool { return n.identified() }

// Key returns the deduplication key of n.
func (n NewsArticle) Key() string {
	switch {
	case n.ID > 0:
		return strconv.FormatInt(n.ID, 10)
	case n.URL != "":
		return n.URL
	case n.Headline != "":
		return n.Headline
	}
	source := n.Source
	if source == "" {
		source = "unknown"
	}
	return fmt.Sprintf("%d-%s", n.Datetime, source)
}

// Time returns the publication time of n.
func (n NewsArticle) Time() time.Time { return time.Unix(n.Datetime, 0) }

// RelatedSymbols splits the comma separated Related field.
func (n NewsArticle) RelatedSymbols() []string {
	var symbols []string
	for _, s := range strings.Split(n.Related, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// CleanSymbols trims and uppercases symbols and drops the empty ones.
// Order and duplicates are preserved.
func CleanSymbols(symbols []string) []string {
	clean := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			clean = append(clean, s)
		}
	}
	return clean
}
