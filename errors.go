package signalist

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a setting that must be present before any call to
// a provider can be attempted.
type ConfigurationError struct {
	Setting string // name of the missing or invalid setting
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing configuration %s", e.Setting)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Setting, e.Reason)
}

// HTTPError is returned for a non-2xx response of a provider.
type HTTPError struct {
	StatusCode int
	Status     string // status text without the code, e.g. "Too Many Requests"
	URL        string // redacted address, without credentials
}

func (e *HTTPError) Error() string { return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status) }

// ValidationError describes why a raw article cannot be used.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid article %s: %s", e.Field, e.Reason) }

// NewsFetchError is the only error surfaced by Aggregator.GetNews.
// The cause is available through errors.As or errors.Unwrap.
type NewsFetchError struct {
	Err error
}

func (e *NewsFetchError) Error() string { return "failed to fetch news" }
func (e *NewsFetchError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err, or one of the errors it wraps, is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cerr *ConfigurationError
	return errors.As(err, &cerr)
}
