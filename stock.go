package signalist

import "time"

// Stock is a symbol returned by a search, with its watchlist status for the current user.
type Stock struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Exchange    string `json:"exchange"`
	Type        string `json:"type"`
	InWatchlist bool   `json:"isInWatchlist"`
}

// Quote is the latest price of a symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Time returns the time of the quote.
func (q Quote) Time() time.Time { return time.Unix(q.Timestamp, 0) }

// WatchlistItem is a symbol saved by a user.
type WatchlistItem struct {
	UserID  string    `json:"userId"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"addedAt"`
}

// User is a registered user as seen by the news mail.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserProfile is the profile filled in at sign up.
type UserProfile struct {
	Email             string `json:"email" validate:"required,email"`
	Name              string `json:"name" validate:"required"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investmentGoals"`
	RiskTolerance     string `json:"riskTolerance"`
	PreferredIndustry string `json:"preferredIndustry"`
}
