package service

import (
	"context"
	"sync"
)

// ── Reload guard ───────────────────────────────────────────
// Serializes reloads per source. A trigger that arrives while its source
// is reloading is not dropped: it is folded into a single follow-up run,
// so a file saved mid-reload is still picked up.

type reloadGuard struct {
	mu      sync.Mutex
	pending map[string]bool // url -> another run requested
	wg      sync.WaitGroup
}

// Acquire claims url for reloading. When a reload of url is already under
// way it queues a follow-up and returns false.
func (g *reloadGuard) Acquire(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		g.pending = make(map[string]bool)
	}
	if _, busy := g.pending[url]; busy {
		g.pending[url] = true
		return false
	}
	g.pending[url] = false
	g.wg.Add(1)
	return true
}

// Release ends a run started by Acquire. It reports true, keeping url
// claimed, when a follow-up was queued meanwhile.
func (g *reloadGuard) Release(url string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending[url] {
		g.pending[url] = false
		return true
	}
	delete(g.pending, url)
	g.wg.Done()
	return false
}

// Wait blocks until no source is reloading or ctx is done.
func (g *reloadGuard) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
