// internal/intake/gate/gate.go

// Package gate bounds the number of in-flight AI provider calls.
package gate

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"logistics-intake/internal/common/metrics"
)

var ErrAdmissionTimeout = errors.New("ADMISSION_TIMEOUT")

// Gate is a fixed-capacity admission gate. Waiters are served in FIFO order
// (channel receivers queue in arrival order) and give up after the configured
// wait timeout. A timed-out caller must treat its request as dropped.
type Gate struct {
	permits  chan struct{}
	capacity int
	timeout  time.Duration
	waiting  atomic.Int64
	inFlight atomic.Int64
}

func New(capacity int, waitTimeout time.Duration) *Gate {
	g := &Gate{
		permits:  make(chan struct{}, capacity),
		capacity: capacity,
		timeout:  waitTimeout,
	}
	for i := 0; i < capacity; i++ {
		g.permits <- struct{}{}
	}
	metrics.GateSlotsAvailable.Set(float64(capacity))
	return g
}

// Acquire blocks until a permit frees, the wait timeout elapses, or ctx is
// cancelled. It returns ErrAdmissionTimeout when the queue wait exceeded the
// limit. Every nil return must be paired with exactly one Release.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case <-g.permits:
		g.granted()
		return nil
	default:
	}

	g.waiting.Add(1)
	metrics.GateWaiting.Inc()
	defer func() {
		g.waiting.Add(-1)
		metrics.GateWaiting.Dec()
	}()

	timer := time.NewTimer(g.timeout)
	defer timer.Stop()

	select {
	case <-g.permits:
		g.granted()
		return nil
	case <-timer.C:
		return ErrAdmissionTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) granted() {
	g.inFlight.Add(1)
	metrics.GateSlotsAvailable.Dec()
}

// Release returns one permit. Calling it without a matching Acquire is a
// programming error; the surplus permit is discarded so the pool can never
// grow past capacity.
func (g *Gate) Release() {
	select {
	case g.permits <- struct{}{}:
		g.inFlight.Add(-1)
		metrics.GateSlotsAvailable.Inc()
	default:
	}
}

// Waiting reports how many callers are currently queued for a permit.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}

// Available reports the number of free permits.
func (g *Gate) Available() int {
	return len(g.permits)
}

func (g *Gate) Capacity() int {
	return g.capacity
}
