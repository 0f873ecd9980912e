package httpcache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in redis, expiry is delegated to the server.
type RedisStore struct {
	Client redis.Cmdable
	Prefix string // defaults to "signalist:http:"
}

// NewRedisStore connects to the redis server at url, e.g. redis://localhost:6379/0.
func NewRedisStore(url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisStore{Client: redis.NewClient(opt)}, nil
}

func (s *RedisStore) key(key string) string {
	if s.Prefix == "" {
		return "signalist:http:" + key
	}
	return s.Prefix + key
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.Client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return value, err
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.Client.Set(ctx, s.key(key), value, ttl).Err()
}
