package httpcache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newServer returns a server answering body with status, and its request counter.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("Get(%q) unexpected error: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll() unexpected error: %v", err)
	}
	return resp.StatusCode, string(b)
}

func stores(t *testing.T) map[string]Store {
	mr := miniredis.RunT(t)
	return map[string]Store{
		"disk":   &DiskStore{Dir: t.TempDir()},
		"memory": NewMemoryStore(16, time.Hour),
		"redis":  &RedisStore{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})},
	}
}

func TestTransport_CachesSuccess(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			srv, calls := newServer(t, http.StatusOK, `[{"id":1}]`)
			client := NewClient(store, 10*time.Minute)

			for i := 0; i < 3; i++ {
				status, body := get(t, client, srv.URL+"/news?category=general")
				if status != http.StatusOK || body != `[{"id":1}]` {
					t.Errorf("Get() #%d = %d %q, want 200 %q", i, status, body, `[{"id":1}]`)
				}
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("server received %d requests, want 1", got)
			}

			// another query is another entry.
			get(t, client, srv.URL+"/news?category=forex")
			if got := calls.Load(); got != 2 {
				t.Errorf("server received %d requests, want 2", got)
			}
		})
	}
}

func TestTransport_DoesNotCacheFailures(t *testing.T) {
	srv, calls := newServer(t, http.StatusTooManyRequests, `{"error":"limit"}`)
	client := NewClient(NewMemoryStore(16, time.Hour), time.Hour)

	for i := 0; i < 2; i++ {
		if status, _ := get(t, client, srv.URL); status != http.StatusTooManyRequests {
			t.Errorf("Get() status = %d, want %d", status, http.StatusTooManyRequests)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server received %d requests, want 2", got)
	}
}

func TestTransport_ZeroTTLDisablesCache(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{}`)
	store := NewMemoryStore(16, time.Hour)
	client := NewClient(store, 0)

	get(t, client, srv.URL)
	get(t, client, srv.URL)
	if got := calls.Load(); got != 2 {
		t.Errorf("server received %d requests, want 2", got)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries, want 0", store.Len())
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(4, time.Hour)
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, "k", []byte("v"), 5*time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if v, err := s.Get(ctx, "k"); err != nil || string(v) != "v" {
		t.Errorf("Get() = %q, %v, want \"v\", nil", v, err)
	}

	now = now.Add(5 * time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after ttl error = %v, want ErrMiss", err)
	}
}

func TestDiskStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := &DiskStore{Dir: t.TempDir()}

	if _, err := s.Get(ctx, "absent"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(absent) error = %v, want ErrMiss", err)
	}
	if err := s.Set(ctx, "old", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, "old"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get(old) error = %v, want ErrMiss", err)
	}
	if err := s.Set(ctx, "fresh", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if v, err := s.Get(ctx, "fresh"); err != nil || string(v) != "v" {
		t.Errorf("Get(fresh) = %q, %v, want \"v\", nil", v, err)
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := &RedisStore{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}), Prefix: "test:"}

	if err := s.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set() unexpected error: %v", err)
	}
	if !mr.Exists("test:k") {
		t.Errorf("redis has no key %q", "test:k")
	}
	if v, err := s.Get(ctx, "k"); err != nil || string(v) != "v" {
		t.Errorf("Get() = %q, %v, want \"v\", nil", v, err)
	}

	mr.FastForward(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMiss) {
		t.Errorf("Get() after ttl error = %v, want ErrMiss", err)
	}
}
