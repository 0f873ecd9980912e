package cmd

import (
	"github.com/etnz/signalist/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line for shell completion.
//
// A main package calls Completion().Complete(name) before parsing the flags.
func Completion() *complete.Command {
	topics, _ := docs.GetAllTopics()
	email := map[string]complete.Predictor{"email": predict.Nothing}
	dryRun := map[string]complete.Predictor{"dry-run": predict.Nothing}

	return &complete.Command{
		Flags: map[string]complete.Predictor{
			"finnhub-api-key": predict.Nothing,
			"database-url":    predict.Nothing,
			"cache":           predict.Set{"disk", "memory", "redis", "none"},
			"redis-url":       predict.Nothing,
			"outbox":          predict.Dirs("*"),
			"mail-from":       predict.Nothing,
			"log-level":       predict.Set{"debug", "info", "warn", "error"},
		},
		Sub: map[string]*complete.Command{
			"news":   {Flags: map[string]complete.Predictor{"json": predict.Nothing}},
			"search": {Flags: email},
			"quote":  {Flags: map[string]complete.Predictor{"currency": predict.Set{"USD", "EUR", "GBP", "JPY"}}},
			"watchlist": {Sub: map[string]*complete.Command{
				"add":    {Flags: email},
				"remove": {Flags: email},
				"list": {Flags: map[string]complete.Predictor{
					"email":    predict.Nothing,
					"quotes":   predict.Nothing,
					"currency": predict.Set{"USD", "EUR", "GBP", "JPY"},
				}},
			}},
			"welcome": {Flags: map[string]complete.Predictor{
				"email":    predict.Nothing,
				"name":     predict.Nothing,
				"country":  predict.Nothing,
				"goals":    predict.Nothing,
				"risk":     predict.Set{"Low", "Medium", "High"},
				"industry": predict.Nothing,
				"dry-run":  predict.Nothing,
			}},
			"digest": {Flags: dryRun},
			"serve": {Flags: map[string]complete.Predictor{
				"addr":     predict.Nothing,
				"schedule": predict.Nothing,
				"dry-run":  predict.Nothing,
			}},
			"topic": {Args: predict.Set(append(topics, "*"))},
			"help":  {Args: predict.Set{"news", "search", "quote", "watchlist", "welcome", "digest", "serve", "topic"}},
		},
	}
}
