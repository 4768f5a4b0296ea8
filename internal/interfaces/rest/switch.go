package rest

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/omnihive/backend/internal/application/services"
)

// generation is one mounted web engine. Close stops new requests from
// reaching it and waits for the ones in flight.
type generation struct {
	sw      *Switch
	handler http.Handler

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

func (g *generation) enter() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.closed {
		return false
	}
	g.inflight.Add(1)
	return true
}

// Close implements services.Listener
func (g *generation) Close(ctx context.Context) error {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.sw.current.CompareAndSwap(g, nil)

	done := make(chan struct{})
	go func() {
		g.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Switch is the web port handler. Each rebuild mounts a new engine; until
// one is mounted, or after the last one closed, the fallback answers.
type Switch struct {
	fallback http.Handler
	current  atomic.Pointer[generation]
}

// NewSwitch creates a switch serving fallback
func NewSwitch(fallback http.Handler) *Switch {
	return &Switch{fallback: fallback}
}

func (s *Switch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g := s.current.Load(); g != nil && g.enter() {
		defer g.inflight.Done()
		g.handler.ServeHTTP(w, r)
		return
	}
	s.fallback.ServeHTTP(w, r)
}

// Mount makes h the served engine and returns its listener
func (s *Switch) Mount(h http.Handler) services.Listener {
	g := &generation{sw: s, handler: h}
	s.current.Store(g)
	return g
}

// Mounter builds the web engine of each build and mounts it on sw
func Mounter(sw *Switch, deps Deps) services.Mounter {
	return func(ctx context.Context, b *services.Build) (services.Listener, error) {
		return sw.Mount(NewWebEngine(b, deps)), nil
	}
}
