package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"shorts/internal/clipcache"
	"shorts/internal/compose"
)

// ErrNotCached is returned when a remote link has no downloaded copy under
// the clip's keyword.
var ErrNotCached = errors.New("remote clip not in cache")

// Resolver implements compose.SourceResolver against the local filesystem,
// falling back to the keyword clip cache for remote links.
type Resolver struct {
	Prober  *Prober
	Cache   clipcache.Cache
	BaseDir string
}

// NewResolver returns a resolver rooted at baseDir.
func NewResolver(prober *Prober, cache clipcache.Cache, baseDir string) *Resolver {
	return &Resolver{Prober: prober, Cache: cache, BaseDir: baseDir}
}

func (r *Resolver) Resolve(ctx context.Context, clip compose.ClipPlacement) (compose.Source, error) {
	path, err := r.localPath(ctx, clip)
	if err != nil {
		return compose.Source{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return compose.Source{}, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return compose.Source{}, fmt.Errorf("source %s is a directory", path)
	}

	if r.Prober == nil {
		return compose.Source{}, errors.New("resolver has no prober")
	}
	probe, err := r.Prober.Probe(ctx, path)
	if err != nil {
		return compose.Source{}, err
	}
	if !probe.HasVideo {
		return compose.Source{}, fmt.Errorf("source %s has no video stream", path)
	}

	return compose.Source{
		Path:     path,
		Width:    probe.Width,
		Height:   probe.Height,
		Duration: probe.DurationSeconds,
	}, nil
}

func (r *Resolver) localPath(ctx context.Context, clip compose.ClipPlacement) (string, error) {
	ref := strings.TrimSpace(clip.SourceRef)
	if ref == "" {
		return "", errors.New("empty source reference")
	}
	if !IsRemote(ref) {
		if filepath.IsAbs(ref) || r.BaseDir == "" {
			return filepath.Clean(ref), nil
		}
		return filepath.Join(r.BaseDir, ref), nil
	}

	if strings.TrimSpace(clip.Keyword) == "" {
		return "", fmt.Errorf("%w: %s has no keyword", ErrNotCached, ref)
	}
	cached, ok, err := clipcache.Lookup(ctx, r.Cache, clip.Keyword, ref)
	if err != nil {
		return "", err
	}
	if !ok || cached.Path == "" {
		return "", fmt.Errorf("%w: keyword=%q link=%s", ErrNotCached, clip.Keyword, ref)
	}
	return cached.Path, nil
}

// IsRemote reports whether ref is an http(s) URL.
func IsRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.Host != ""
	}
	return false
}

var _ compose.SourceResolver = (*Resolver)(nil)
