package clipcache

import (
	"context"
	"sync"
)

// Memory is a process-local cache guarded by a mutex.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]Clip
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]Clip)}
}

func (m *Memory) Get(_ context.Context, keyword string) ([]Clip, bool, error) {
	key, err := normalizeKeyword(keyword)
	if err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	clips, ok := m.entries[key]
	return cloneClips(clips), ok, nil
}

func (m *Memory) Put(_ context.Context, keyword string, clips []Clip) error {
	key, err := normalizeKeyword(keyword)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cloneClips(clips)
	return nil
}

var _ Cache = (*Memory)(nil)
