// Package xstream models the "helper execution context" offload pattern
// of spec.md §5: CPU-heavy work (Reed-Solomon encode) and blocking I/O
// (peer RPCs, hole-fill) are submitted to a bounded worker pool, and the
// submitting goroutine suspends on a single-shot rendezvous handle instead
// of blocking the driver's own execution context directly.
package xstream

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pool is a bounded helper execution context. Submit never blocks the
// caller past acquiring a slot; the actual work runs on a pool goroutine.
type Pool struct {
	sem chan struct{}
}

// NewPool creates a pool with room for size concurrent offloaded jobs.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Result carries the outcome of an offloaded job, spec.md's
// "Result<(), Error>" rendezvous payload generalized to carry a value.
type Result[T any] struct {
	Value T
	Err   error
}

// Rendezvous is the single-shot completion handle a submitting goroutine
// awaits. It is satisfied exactly once by the helper running the job.
type Rendezvous[T any] struct {
	ch chan Result[T]
}

func newRendezvous[T any]() *Rendezvous[T] {
	return &Rendezvous[T]{ch: make(chan Result[T], 1)}
}

// Wait blocks until the job completes or ctx is cancelled, whichever comes
// first. This is the suspension point spec.md §5 describes: the caller
// yields here rather than spinning.
func (r *Rendezvous[T]) Wait(ctx context.Context) (T, error) {
	var zero T
	select {
	case res := <-r.ch:
		return res.Value, res.Err
	case <-ctx.Done():
		return zero, fmt.Errorf("xstream: rendezvous cancelled: %w", ctx.Err())
	}
}

// Submit offloads fn to the pool and returns a Rendezvous the caller can
// Wait on. Submit itself suspends only long enough to acquire a pool slot.
func Submit[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *Rendezvous[T] {
	r := newRendezvous[T]()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		r.ch <- Result[T]{Err: fmt.Errorf("xstream: submit cancelled: %w", ctx.Err())}
		return r
	}

	go func() {
		defer func() { <-p.sem }()
		v, err := fn(ctx)
		r.ch <- Result[T]{Value: v, Err: err}
	}()

	return r
}

// RunAll offloads a batch of independent jobs and waits for all of them,
// returning the first error encountered (via errgroup). The peer client
// does not use it: it issues one RPC at a time through Submit.
func RunAll(ctx context.Context, jobs ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, job := range jobs {
		job := job
		g.Go(func() error { return job(gctx) })
	}
	return g.Wait()
}
