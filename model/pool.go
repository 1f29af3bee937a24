package model

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ostraka/segstream/errors"
)

// Pool caches one loaded Backend per mode, process-wide. Loading is lazy:
// the first Get for a mode runs the loader, concurrent first calls coalesce
// onto that single load, and a failed load is forgotten so a later Get can
// retry. The pool also tracks which modes have completed warm-up, with the
// invariant that only a loaded mode can be warm.
//
// The pool loads and caches; it never runs inference.
type Pool struct {
	loader Loader
	log    *zap.SugaredLogger

	mu      sync.Mutex
	entries map[Mode]*poolEntry
	warmed  map[Mode]bool
}

// poolEntry is one load attempt. ready is closed when the attempt finishes;
// afterwards exactly one of backend and err is set.
type poolEntry struct {
	ready   chan struct{}
	backend Backend
	err     error
}

// NewPool creates a pool over the given loader.
func NewPool(loader Loader, log *zap.SugaredLogger) *Pool {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pool{
		loader:  loader,
		log:     log,
		entries: make(map[Mode]*poolEntry),
		warmed:  make(map[Mode]bool),
	}
}

// Get returns the backend for mode, loading it on first use. Concurrent
// callers for the same mode share one load and all receive its result.
// Errors are not cached: once every waiter has been notified the entry is
// dropped, so the next Get retries the load.
func (p *Pool) Get(ctx context.Context, mode Mode) (Backend, error) {
	p.mu.Lock()
	if e, ok := p.entries[mode]; ok {
		p.mu.Unlock()
		return waitLoad(ctx, e)
	}

	e := &poolEntry{ready: make(chan struct{})}
	p.entries[mode] = e
	p.mu.Unlock()

	p.log.Infow("Loading model",
		"mode", mode.String(),
		"model", mode.Profile().Name)
	start := time.Now()
	backend, err := p.loader.Load(ctx, mode)

	p.mu.Lock()
	if p.entries[mode] != e {
		// Clear ran while the load was in flight. The pool no longer owns
		// this entry, so release the fresh backend and fail the waiters.
		e.err = errors.Wrapf(errors.ErrPoolClosed, "pool cleared during %s load", mode)
		close(e.ready)
		p.mu.Unlock()
		if backend != nil {
			_ = backend.Close()
		}
		return nil, e.err
	}
	if err != nil {
		delete(p.entries, mode)
		e.err = err
		close(e.ready)
		p.mu.Unlock()
		p.log.Errorw("Model load failed",
			"mode", mode.String(),
			"error", err)
		return nil, err
	}
	e.backend = backend
	close(e.ready)
	p.mu.Unlock()

	p.log.Infow("Model loaded",
		"mode", mode.String(),
		"model", mode.Profile().Name,
		"duration", time.Since(start))
	return backend, nil
}

// waitLoad blocks until the entry's load attempt finishes or ctx is done.
func waitLoad(ctx context.Context, e *poolEntry) (Backend, error) {
	select {
	case <-e.ready:
		if e.err != nil {
			return nil, e.err
		}
		return e.backend, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for model load")
	}
}

// IsWarm reports whether mode has completed its warm-up passes.
func (p *Pool) IsWarm(mode Mode) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.warmed[mode]
}

// MarkWarm records that mode's warm-up passes ran. A mode that is not
// currently loaded cannot be warm, so marking one is a no-op.
func (p *Pool) MarkWarm(mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[mode]; ok && e.backend != nil {
		p.warmed[mode] = true
	}
}

// Clear evicts every cached backend and resets the warmed set. Loads still
// in flight discover the eviction when they finish; their waiters receive
// ErrPoolClosed. The pool stays usable after Clear.
func (p *Pool) Clear() {
	p.mu.Lock()
	old := p.entries
	p.entries = make(map[Mode]*poolEntry)
	p.warmed = make(map[Mode]bool)
	p.mu.Unlock()

	for mode, e := range old {
		select {
		case <-e.ready:
			if e.backend != nil {
				if err := e.backend.Close(); err != nil {
					p.log.Warnw("Backend close failed",
						"mode", mode.String(),
						"error", err)
				}
			}
		default:
			// Still loading; Get closes the backend when the load lands.
		}
	}
	if len(old) > 0 {
		p.log.Infow("Model pool cleared", "evicted", len(old))
	}
}
