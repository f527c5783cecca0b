// Package extract runs concept extraction for a batch of documents
// concurrently, under a bounded worker pool and a single process-wide rate
// limit on outgoing LLM requests.
package extract

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a FIFO, reentrant-safe gate that ensures at least
// Interval elapses between any two successful Wait returns.
type RateLimiter struct {
	interval time.Duration

	mu       sync.Mutex
	queue    []chan struct{}
	lastSlot time.Time

	totalRequests int64
	totalWaitNS   int64
	maxWaitNS     int64
}

// NewRateLimiter builds a limiter enforcing at least interval between
// requests. A non-positive interval disables throttling.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval}
}

// Wait blocks until it is this caller's turn, respecting FIFO order and
// ctx cancellation, then records the slot as consumed.
func (r *RateLimiter) Wait(ctx context.Context) error {
	start := time.Now()

	ticket := make(chan struct{})
	r.mu.Lock()
	r.queue = append(r.queue, ticket)
	first := len(r.queue) == 1
	r.mu.Unlock()

	if !first {
		select {
		case <-ticket:
		case <-ctx.Done():
			r.drop(ticket)
			return ctx.Err()
		}
	}

	r.mu.Lock()
	wait := r.interval - time.Since(r.lastSlot)
	r.mu.Unlock()
	if wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			r.advance()
			return ctx.Err()
		}
	}

	r.mu.Lock()
	r.lastSlot = time.Now()
	r.popFront()
	waited := time.Since(start)
	r.totalRequests++
	r.totalWaitNS += int64(waited)
	if int64(waited) > r.maxWaitNS {
		r.maxWaitNS = int64(waited)
	}
	r.mu.Unlock()

	return nil
}

// popFront removes the head of the queue (the caller's own ticket) and
// wakes the next waiter, if any. Must be called with r.mu held.
func (r *RateLimiter) popFront() {
	if len(r.queue) == 0 {
		return
	}
	r.queue = r.queue[1:]
	if len(r.queue) > 0 {
		close(r.queue[0])
	}
}

// advance is popFront called by a caller that reached the front of the
// queue but abandoned the wait (ctx cancelled) before consuming its slot.
func (r *RateLimiter) advance() {
	r.mu.Lock()
	r.popFront()
	r.mu.Unlock()
}

// drop removes ticket from the queue when its owner abandons the wait
// before reaching the front, preserving FIFO order for everyone behind it.
func (r *RateLimiter) drop(ticket chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.queue {
		if t == ticket {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return
		}
	}
}

// Metrics is the rate limiter's observability surface.
type Metrics struct {
	TotalRequests int64
	AvgWaitMS     float64
	MaxWaitMS     float64
	QueueDepth    int
}

// Metrics snapshots the limiter's current counters.
func (r *RateLimiter) Metrics() Metrics {
	r.mu.Lock()
	defer r.mu.Unlock()

	var avg float64
	if r.totalRequests > 0 {
		avg = float64(r.totalWaitNS) / float64(r.totalRequests) / float64(time.Millisecond)
	}
	return Metrics{
		TotalRequests: r.totalRequests,
		AvgWaitMS:     avg,
		MaxWaitMS:     float64(r.maxWaitNS) / float64(time.Millisecond),
		QueueDepth:    len(r.queue),
	}
}
