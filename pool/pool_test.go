// ABOUTME: Tests for the batch worker pool
// ABOUTME: Ensures every index runs exactly once and sizing defaults apply

package pool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestForEachVisitsEveryIndex(t *testing.T) {
	p := NewWorkerPool(4, 8)
	defer p.Close()

	const n = 500
	hits := make([]int32, n)

	p.ForEach(n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("Index %d ran %d times, want 1", i, h)
		}
	}
}

func TestForEachReusable(t *testing.T) {
	p := NewWorkerPool(2, 0)
	defer p.Close()

	var total atomic.Int64
	for range 3 {
		p.ForEach(10, func(i int) {
			total.Add(int64(i))
		})
	}

	if got := total.Load(); got != 135 {
		t.Errorf("total = %d, want 135", got)
	}
}

func TestNewWorkerPoolDefaultsToCPUs(t *testing.T) {
	p := NewWorkerPool(0, 0)
	defer p.Close()

	if p.Workers() != runtime.NumCPU() {
		t.Errorf("Workers() = %d, want %d", p.Workers(), runtime.NumCPU())
	}
}
