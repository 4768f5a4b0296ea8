// Package cache provides the memory and redis cache workers.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/omnihive/backend/internal/domain/ports"
)

type memoryEntry struct {
	value   string
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryWorker is a process-local cache with per-key expiry
type MemoryWorker struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryWorker creates an empty memory cache
func NewMemoryWorker() *MemoryWorker {
	return &MemoryWorker{entries: make(map[string]memoryEntry), now: time.Now}
}

func (w *MemoryWorker) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := w.Get(ctx, key)
	return ok, err
}

func (w *MemoryWorker) Get(ctx context.Context, key string) (string, bool, error) {
	w.mu.RLock()
	entry, ok := w.entries[key]
	w.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if entry.expired(w.now()) {
		w.mu.Lock()
		delete(w.entries, key)
		w.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set stores value; ttl <= 0 keeps it until removed
func (w *MemoryWorker) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = w.now().Add(ttl)
	}
	w.mu.Lock()
	w.entries[key] = entry
	w.mu.Unlock()
	return nil
}

func (w *MemoryWorker) Remove(ctx context.Context, key string) error {
	w.mu.Lock()
	delete(w.entries, key)
	w.mu.Unlock()
	return nil
}

var _ ports.CacheWorker = (*MemoryWorker)(nil)
