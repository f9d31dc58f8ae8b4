// Package metrics keeps lightweight in-process counters for aggregation
// outcomes: how many stripes took each reconciliation decision, how many
// bytes moved over the peer RPCs, and RPC latency. There is no external
// metrics sink in scope (spec.md treats observability as an external
// collaborator); this package exists so the driver and reconciler have
// somewhere to record outcomes that tests and the demo CLI can inspect.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Decision mirrors reconcile.Decision without importing it, to avoid a
// cycle between metrics and reconcile.
type Decision string

const (
	DecisionNoop           Decision = "noop"
	DecisionAbsentNoFill   Decision = "absent_no_fill"
	DecisionFullEncode     Decision = "full_encode"
	DecisionHoleFill       Decision = "hole_fill"
	DecisionPartialUpdate  Decision = "partial_update"
	DecisionPartialRecalc  Decision = "partial_recalc"
)

// Registry accumulates counters for one aggregation run.
type Registry struct {
	mu          sync.Mutex
	decisions   map[Decision]int64
	bytesMoved  int64
	rpcCount    int64
	rpcDuration time.Duration
	aborted     int64
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{decisions: make(map[Decision]int64)}
}

// RecordDecision increments the counter for a reconciliation decision.
func (r *Registry) RecordDecision(d Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions[d]++
}

// RecordAbort increments the per-stripe abort counter (transient errors
// that did not escalate to a fatal driver failure).
func (r *Registry) RecordAbort() { atomic.AddInt64(&r.aborted, 1) }

// RecordRPC records one peer RPC's payload size and latency.
func (r *Registry) RecordRPC(bytes int, d time.Duration) {
	atomic.AddInt64(&r.bytesMoved, int64(bytes))
	atomic.AddInt64(&r.rpcCount, 1)
	r.mu.Lock()
	r.rpcDuration += d
	r.mu.Unlock()
}

// Snapshot is a point-in-time copy of the registry's counters.
type Snapshot struct {
	Decisions   map[Decision]int64
	BytesMoved  int64
	RPCCount    int64
	RPCDuration time.Duration
	Aborted     int64
}

// Snapshot returns a copy of the current counters.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[Decision]int64, len(r.decisions))
	for k, v := range r.decisions {
		cp[k] = v
	}
	return Snapshot{
		Decisions:   cp,
		BytesMoved:  atomic.LoadInt64(&r.bytesMoved),
		RPCCount:    atomic.LoadInt64(&r.rpcCount),
		RPCDuration: r.rpcDuration,
		Aborted:     atomic.LoadInt64(&r.aborted),
	}
}
