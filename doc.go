// Package signalist selects the market news that feeds the signalist dashboard
// and its daily email digest.
//
// The core functionalities include:
//   - News Aggregation: fetching company news for the symbols of a watchlist,
//     picking articles round-robin so every symbol gets its share, and falling
//     back to the general market feed when nothing symbol specific is found.
//   - Normalization: turning loosely shaped provider articles into complete
//     NewsArticle values, and rejecting those that cannot be identified or dated.
//   - Deduplication: a single key per article (id, url, headline, or
//     datetime+source) so that no article is reported twice.
//
// Providers (see the finnhub package) implement NewsProvider. The digest,
// server and cmd packages are the consumers of Aggregator.GetNews.
package signalist
