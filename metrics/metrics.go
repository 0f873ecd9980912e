// Package metrics provides Prometheus metrics for signalist.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests counts provider calls by endpoint and outcome.
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalist",
			Name:      "provider_requests_total",
			Help:      "Total number of news provider requests",
		},
		[]string{"endpoint", "status"},
	)

	// CacheLookups counts http cache lookups by store and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalist",
			Name:      "cache_lookups_total",
			Help:      "Total number of http cache lookups",
		},
		[]string{"store", "result"},
	)

	// NewsArticles observes the number of articles returned per aggregation.
	NewsArticles = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "signalist",
			Name:      "news_articles",
			Help:      "Distribution of articles returned by an aggregation",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
		},
		[]string{"path"},
	)

	// SymbolFailures counts company news fetches that were dropped.
	SymbolFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signalist",
			Name:      "symbol_fetch_failures_total",
			Help:      "Total number of company news fetches that failed and were ignored",
		},
	)

	// DigestEmails counts digest outcomes per user (sent, skipped, failed).
	DigestEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalist",
			Name:      "digest_emails_total",
			Help:      "Total number of daily digest outcomes",
		},
		[]string{"result"},
	)
)

// RecordProvider records a provider request.
func RecordProvider(endpoint, status string) {
	ProviderRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordCache records a cache lookup.
func RecordCache(store, result string) {
	CacheLookups.WithLabelValues(store, result).Inc()
}

// RecordNews records the size of an aggregation result; path is "symbols" or "general".
func RecordNews(path string, n int) {
	NewsArticles.WithLabelValues(path).Observe(float64(n))
}

// RecordDigest records a digest outcome.
func RecordDigest(result string) {
	DigestEmails.WithLabelValues(result).Inc()
}
