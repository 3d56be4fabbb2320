package raster

import (
	"context"
	"image"
	"sync"
)

// Source resolves a reference into a raster.
type Source interface {
	Resolve(ctx context.Context, src string) (image.Image, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, src string) (image.Image, error)

func (f SourceFunc) Resolve(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// Result is what a finished load hands back.
type Result struct {
	Src   string
	Image image.Image
	Err   error
}

// Loader decodes sources off the owning goroutine and delivers each Result
// back through Post, so completions run where the scene lives.
type Loader struct {
	Source Source
	// Post schedules fn on the owner. Defaults to calling fn directly.
	Post func(fn func())
	// Go starts background work. Defaults to a new goroutine.
	Go func(fn func())

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader returns a Loader that resolves through src.
func NewLoader(src Source, post func(func())) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{Source: src, Post: post, ctx: ctx, cancel: cancel}
}

// Load starts decoding src. done is called once, through Post, unless the
// loader is closed first.
func (l *Loader) Load(ctx context.Context, src string, done func(Result)) {
	l.mu.Lock()
	if l.ctx == nil {
		l.ctx, l.cancel = context.WithCancel(context.Background())
	}
	base := l.ctx
	l.wg.Add(1)
	l.mu.Unlock()

	run := func() {
		defer l.wg.Done()

		ctx, stop := mergeCancel(ctx, base)
		defer stop()

		img, err := l.Source.Resolve(ctx, src)
		if base.Err() != nil {
			return
		}
		res := Result{Src: src, Image: img, Err: err}
		post := l.Post
		if post == nil {
			post = func(fn func()) { fn() }
		}
		post(func() { done(res) })
	}

	if l.Go != nil {
		l.Go(run)
		return
	}
	go run()
}

// Close cancels outstanding loads and waits for their goroutines. Results
// that were not yet posted are dropped.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// mergeCancel returns a context derived from ctx that is also cancelled
// when other is.
func mergeCancel(ctx, other context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(other, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}
