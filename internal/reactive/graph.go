package reactive

import (
	"context"
	"sync"
	"sync/atomic"
)

// Job is the asynchronous part of a recomputation.
type Job[T any] func(ctx context.Context) T

// PrepareFunc snapshots the sources for recomputation seq and returns the
// job that computes the new output. It runs synchronously on the goroutine
// that triggered the recomputation.
type PrepareFunc[T any] func(seq uint64) Job[T]

// Graph recomputes an output field whenever any of its sources changes.
//
// Each change starts one job on its own goroutine. Jobs are not cancelled
// when superseded; instead every job carries the generation it was started
// with and its result is published on the executor only if no newer job
// has been started since.
type Graph[T any] struct {
	output  *Field[T]
	exec    Executor
	prepare PrepareFunc[T]
	scope   *Scope

	seq    atomic.Uint64
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	idle    *sync.Cond
	running int
	closed  bool
	wg      sync.WaitGroup
}

// NewGraph creates a graph publishing into output through exec.
func NewGraph[T any](output *Field[T], exec Executor, prepare PrepareFunc[T]) *Graph[T] {
	ctx, cancel := context.WithCancel(context.Background())
	g := &Graph[T]{
		output:  output,
		exec:    exec,
		prepare: prepare,
		scope:   NewScope(),
		ctx:     ctx,
		cancel:  cancel,
	}
	g.idle = sync.NewCond(&g.mu)
	return g
}

// AddSource makes every change of src trigger a recomputation of g.
func AddSource[S, T any](g *Graph[T], src *Field[S]) {
	Observe(g.scope, src, func(S) { g.Trigger() })
}

// Output returns the derived field.
func (g *Graph[T]) Output() *Field[T] {
	return g.output
}

// Generation returns the sequence number of the most recently started job.
func (g *Graph[T]) Generation() uint64 {
	return g.seq.Load()
}

// Trigger starts a new recomputation and returns its sequence number, or 0
// if the graph is closed. It does not wait for the job.
func (g *Graph[T]) Trigger() uint64 {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return 0
	}
	seq := g.seq.Add(1)
	g.wg.Add(1)
	g.running++
	g.mu.Unlock()

	job := g.prepare(seq)
	go func() {
		defer g.wg.Done()
		v := job(g.ctx)
		g.exec.Post(func() { g.publish(seq, v) })

		g.mu.Lock()
		g.running--
		if g.running == 0 {
			g.idle.Broadcast()
		}
		g.mu.Unlock()
	}()
	return seq
}

// Wait blocks until no job is running. Results are posted to the executor
// before their job counts as finished, so after Wait returns they are queued
// there but not necessarily published yet.
func (g *Graph[T]) Wait() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.running > 0 {
		g.idle.Wait()
	}
}

func (g *Graph[T]) publish(seq uint64, v T) {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed || seq != g.seq.Load() {
		return
	}
	g.output.Set(v)
}

// Close detaches the sources, cancels the context passed to running jobs
// and waits for them to return. Results that arrive afterwards are dropped.
func (g *Graph[T]) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.mu.Unlock()

	g.scope.Close()
	g.cancel()
	g.wg.Wait()
}
