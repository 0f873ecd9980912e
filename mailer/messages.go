package mailer

import (
	"github.com/etnz/signalist/date"
	"github.com/etnz/signalist/renderer"
)

// NewsSummary returns the daily news email of day.
func NewsSummary(from, to string, day date.Date, summary string) Message {
	return Message{
		From:     from,
		To:       to,
		Subject:  "Market News Summary Today - " + day.Long(),
		Markdown: renderer.RenderDigestEmail(day, summary),
	}
}

// Welcome returns the welcome email.
func Welcome(from, to, name, intro string) Message {
	return Message{
		From:     from,
		To:       to,
		Subject:  "Welcome to Signalist - your stock market toolkit is ready!",
		Markdown: renderer.RenderWelcomeEmail(name, intro),
	}
}
