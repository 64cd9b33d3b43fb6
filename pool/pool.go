// ABOUTME: Worker pool for parallelizing per-generation fitness evaluation
// ABOUTME: Provides an indexed for-each over a pond pool with submit-and-wait semantics

// Package pool wraps a bounded goroutine pool for batch work.
package pool

import (
	"runtime"

	"github.com/alitto/pond"
)

// WorkerPool runs indexed batches of independent tasks
type WorkerPool struct {
	workers int
	pool    *pond.WorkerPool
}

// NewWorkerPool creates a pool with the given number of workers
// workers <= 0 sizes the pool to available CPUs.
func NewWorkerPool(workers, bufferSize int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	if bufferSize < workers {
		bufferSize = workers
	}

	return &WorkerPool{
		workers: workers,
		pool:    pond.New(workers, bufferSize),
	}
}

// Workers returns the pool size
func (p *WorkerPool) Workers() int {
	return p.workers
}

// ForEach calls fn(i) for every i in [0, n) and blocks until all calls return
// Calls run concurrently, so fn must only write to index-owned state.
func (p *WorkerPool) ForEach(n int, fn func(i int)) {
	group := p.pool.Group()
	for i := range n {
		group.Submit(func() {
			fn(i)
		})
	}
	group.Wait()
}

// Close shuts down the pool and waits for running tasks to exit
func (p *WorkerPool) Close() {
	p.pool.StopAndWait()
}
