package clipcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces cache keys in a shared redis.
const DefaultKeyPrefix = "shorts:clips:"

// Redis stores keyword entries as JSON strings.
type Redis struct {
	client *redis.Client
	prefix string
	opts   Options
}

// NewRedis connects lazily to the configured redis server.
func NewRedis(opts Options) (*Redis, error) {
	if opts.RedisAddr == "" {
		return nil, errors.New("redis cache requires an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr: opts.RedisAddr,
		DB:   opts.RedisDB,
	})
	return NewRedisWithClient(client, opts), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, opts Options) *Redis {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix, opts: opts}
}

// Key returns the redis key holding keyword's entry.
func (r *Redis) Key(keyword string) (string, error) {
	key, err := normalizeKeyword(keyword)
	if err != nil {
		return "", err
	}
	return r.prefix + key, nil
}

func (r *Redis) Get(ctx context.Context, keyword string) ([]Clip, bool, error) {
	key, err := r.Key(keyword)
	if err != nil {
		return nil, false, err
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var clips []Clip
	if err := json.Unmarshal(raw, &clips); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return clips, true, nil
}

func (r *Redis) Put(ctx context.Context, keyword string, clips []Clip) error {
	key, err := r.Key(keyword)
	if err != nil {
		return err
	}
	if clips == nil {
		clips = []Clip{}
	}
	raw, err := json.Marshal(clips)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, r.opts.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Cache = (*Redis)(nil)
