// Package clipcache stores the clips already downloaded for a search keyword
// so that later jobs can resolve remote links to local files.
package clipcache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Clip is one downloaded clip recorded under a keyword.
type Clip struct {
	Link string `json:"link"`
	Path string `json:"path"`
}

// Cache maps keywords to downloaded clips.
type Cache interface {
	Get(ctx context.Context, keyword string) ([]Clip, bool, error)
	Put(ctx context.Context, keyword string, clips []Clip) error
}

// Options selects and configures a cache backend.
type Options struct {
	Backend   string
	RedisAddr string
	RedisDB   int
	KeyPrefix string
	TTL       time.Duration
}

// ErrEmptyKeyword is returned for blank keys.
var ErrEmptyKeyword = errors.New("clip cache keyword is empty")

// New builds the backend named by opts.Backend ("memory" or "redis").
func New(opts Options) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(opts)
	default:
		return nil, fmt.Errorf("unknown clip cache backend %q", opts.Backend)
	}
}

// Lookup returns the cached clip under keyword whose link matches.
func Lookup(ctx context.Context, c Cache, keyword, link string) (Clip, bool, error) {
	if c == nil {
		return Clip{}, false, nil
	}
	clips, ok, err := c.Get(ctx, keyword)
	if err != nil || !ok {
		return Clip{}, false, err
	}
	for _, clip := range clips {
		if clip.Link == link {
			return clip, true, nil
		}
	}
	return Clip{}, false, nil
}

func normalizeKeyword(keyword string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(keyword))
	if key == "" {
		return "", ErrEmptyKeyword
	}
	return key, nil
}

func cloneClips(clips []Clip) []Clip {
	if clips == nil {
		return nil
	}
	out := make([]Clip, len(clips))
	copy(out, clips)
	return out
}
