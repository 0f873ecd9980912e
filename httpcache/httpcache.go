// Package httpcache provides an http.RoundTripper that caches successful GET
// responses for a fixed time to live.
//
// Responses are stored in their wire format (httputil.DumpResponse) so that any
// Store able to keep bytes can be used: a directory, an in-process LRU or redis.
package httpcache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/etnz/signalist/metrics"
)

// ErrMiss is returned by a Store when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store keeps cached responses.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Transport caches the successful GET responses of Base into Store for TTL.
type Transport struct {
	Base   http.RoundTripper // http.DefaultTransport if nil
	Store  Store
	TTL    time.Duration
	Logger *slog.Logger
}

// NewClient returns an http.Client whose responses are cached in store for ttl.
func NewClient(store Store, ttl time.Duration) *http.Client {
	return &http.Client{Transport: &Transport{Store: store, TTL: ttl}}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

func (t *Transport) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

// Key returns the cache key of req.
func Key(req *http.Request) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(req.Method+" "+req.URL.String())))
}

// RoundTrip implements the http.RoundTripper interface. It returns a fresh
// cached response if any, otherwise it performs the request and caches the
// response if it is successful.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.Store == nil || t.TTL <= 0 {
		return t.base().RoundTrip(req)
	}
	ctx := req.Context()
	key := Key(req)
	name := storeName(t.Store)

	content, err := t.Store.Get(ctx, key)
	switch {
	case err == nil:
		resp, rerr := http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
		if rerr == nil {
			metrics.RecordCache(name, "hit")
			return resp, nil
		}
		t.logger().Warn("corrupted cache entry (ignored)", "store", name, "error", rerr)
		metrics.RecordCache(name, "error")
	case errors.Is(err, ErrMiss):
		metrics.RecordCache(name, "miss")
	default:
		t.logger().Warn("cache read error (ignored)", "store", name, "error", err)
		metrics.RecordCache(name, "error")
	}

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	t.logger().Debug("http", "method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "status", resp.Status)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	// DumpResponse leaves resp.Body readable.
	content, err = httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, err
	}
	if err := t.Store.Set(ctx, key, content, t.TTL); err != nil {
		t.logger().Warn("cache write error (ignored)", "store", name, "error", err)
	}
	return resp, nil
}

func storeName(s Store) string {
	switch s.(type) {
	case *DiskStore:
		return "disk"
	case *MemoryStore:
		return "memory"
	case *RedisStore:
		return "redis"
	default:
		return "other"
	}
}
