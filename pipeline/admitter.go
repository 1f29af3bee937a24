// Package pipeline bounds a session's frame intake. There is no queue: a
// counter caps the frames past admission and a rate limiter spaces them, so
// tail latency stays near inference time no matter how fast the client
// sends.
package pipeline

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Admitter decides, per frame, between processing and silently dropping.
// Two controls: an in-flight cap (frames admitted but not yet replied to)
// and a minimum inter-frame interval. Drops are counted for stats and never
// reported to the client; they are normal flow control, not errors.
//
// Admit runs on the session's read pump while Done runs on its dispatch
// worker, so the counter is guarded.
type Admitter struct {
	maxInFlight int
	limiter     *rate.Limiter

	mu       sync.Mutex
	inFlight int
	dropped  int64
	admitted int64
}

// NewAdmitter creates an admitter with the given in-flight cap and minimum
// spacing between admitted frames. Non-positive arguments fall back to an
// effectively open control.
func NewAdmitter(maxInFlight int, minInterval time.Duration) *Admitter {
	if maxInFlight < 1 {
		maxInFlight = 1
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Admitter{
		maxInFlight: maxInFlight,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// Admit accepts or drops an arriving frame. On acceptance the in-flight
// count is incremented; the caller must pair it with exactly one Done once
// the frame's reply (success or error) has been handed to the writer.
func (a *Admitter) Admit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.inFlight >= a.maxInFlight {
		a.dropped++
		return false
	}
	if !a.limiter.Allow() {
		a.dropped++
		return false
	}
	a.inFlight++
	a.admitted++
	return true
}

// Done marks one admitted frame as replied to, clamped at zero.
func (a *Admitter) Done() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight > 0 {
		a.inFlight--
	}
}

// InFlight returns the number of admitted frames awaiting a reply.
func (a *Admitter) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// Dropped returns the number of frames refused since creation.
func (a *Admitter) Dropped() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Admitted returns the number of frames accepted since creation.
func (a *Admitter) Admitted() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.admitted
}
