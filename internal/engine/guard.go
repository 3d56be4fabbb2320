package engine

import "sync"

// Guard serializes callers that share an engine without a single owning
// goroutine, such as the wasm bridge. Calls queued with Defer run after the
// lock is released, so a callback that re-enters the engine cannot deadlock.
type Guard struct {
	mu       sync.Mutex
	deferred []func()
}

// Do runs fn under the lock, then runs whatever fn deferred.
func (g *Guard) Do(fn func()) {
	g.mu.Lock()
	fn()
	queued := g.deferred
	g.deferred = nil
	g.mu.Unlock()

	for _, d := range queued {
		d()
	}
}

// Defer queues fn to run once the current Do returns. It must only be called
// from inside Do.
func (g *Guard) Defer(fn func()) {
	g.deferred = append(g.deferred, fn)
}
