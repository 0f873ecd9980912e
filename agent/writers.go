package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/signalist"
)

// NoMarketNews replaces an unusable news summary.
const NoMarketNews = "No market news"

// WelcomeFallback replaces an unusable welcome intro.
const WelcomeFallback = "Thanks for joining Signalist. You now have the tools to track markets and make smarter moves."

// NewsSummaryPrompt is the prompt of the news summary, {{newsData}} is replaced
// by the articles as indented JSON.
const NewsSummaryPrompt = `Summarize the following market news for an investor who follows these stocks.

Write a few short sections in markdown: a one line market overview, then the key
points per company or theme. Mention the source of each point and link to the
article url when it is available. Keep it factual, no investment advice.

If the list is empty answer exactly "` + NoMarketNews + `".

News:
{{newsData}}`

// WelcomePrompt is the prompt of the welcome intro, {{userProfile}} is replaced
// by the user profile.
const WelcomePrompt = `Write the personalized opening paragraph of a welcome email for a new
Signalist user. Signalist tracks stocks, keeps a watchlist and sends a daily
market news digest. Use the profile to tailor the tone and mention what will
matter most to this user. Two or three sentences, plain text, no greeting line.

User profile:
{{userProfile}}`

// NewNewsEditor returns the expert that summarizes the daily news.
func NewNewsEditor() *Expert {
	return &Expert{
		Name:      "NewsEditor",
		ModelName: Model,
		Config: instruction(`
			You are a financial news editor writing the daily digest of a stock market app.
			You only use the articles you are given. You never invent numbers or events.`),
		Fallback: NoMarketNews,
	}
}

// NewGreeter returns the expert that writes the welcome intro.
func NewGreeter() *Expert {
	return &Expert{
		Name:      "Greeter",
		ModelName: Model,
		Config: instruction(`
			You write warm and concise onboarding messages for a stock market app.`),
		Fallback: WelcomeFallback,
	}
}

// Writer writes the AI generated texts.
type Writer struct {
	Generator Generator
	Editor    *Expert
	Greeter   *Expert
}

// NewWriter returns a Writer using g.
func NewWriter(g Generator) *Writer {
	return &Writer{Generator: g, Editor: NewNewsEditor(), Greeter: NewGreeter()}
}

// SummarizeNews returns the summary of articles.
//
// An error is returned only if the model could not be called.
func (w *Writer) SummarizeNews(ctx context.Context, articles []signalist.NewsArticle) (string, error) {
	if articles == nil {
		articles = []signalist.NewsArticle{}
	}
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", err
	}
	prompt := strings.Replace(NewsSummaryPrompt, "{{newsData}}", string(data), 1)
	return w.Editor.Ask(ctx, w.Generator, prompt)
}

// WelcomeIntro returns the personalized intro of the welcome email of p.
//
// An error is returned only if the model could not be called.
func (w *Writer) WelcomeIntro(ctx context.Context, p signalist.UserProfile) (string, error) {
	profile := fmt.Sprintf(`
- Country: %s
- Investment goals: %s
- Risk tolerance: %s
- Preferred industry: %s
`, p.Country, p.InvestmentGoals, p.RiskTolerance, p.PreferredIndustry)
	prompt := strings.Replace(WelcomePrompt, "{{userProfile}}", profile, 1)
	return w.Greeter.Ask(ctx, w.Generator, prompt)
}
