// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides a persistent, reusable worker pool for parallel
// computation. A Pool is created once and reused across many runs, so that
// repeated runs of the same task (as done by the perf harness) pay no
// goroutine spawn cost.
//
// The calling goroutine always takes part in the work it submits, so a
// function running on a pool worker may itself submit work to the same pool
// without deadlocking: in the worst case the caller executes everything.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	err := pool.Run(len(parts), func(i int) error {
//	    return process(parts[i])
//	})
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem

	// mu is held for reading while work is submitted and for writing by
	// Close, so workC is never sent on after it was closed.
	mu     sync.RWMutex
	closed atomic.Bool
}

// workItem represents a single parallel operation to execute.
type workItem struct {
	fn func()
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	// The caller participates in every run, so numWorkers-1 helpers suffice.
	for range numWorkers - 1 {
		go p.worker()
	}

	return p
}

// worker is the main loop for each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
	}
}

// NumWorkers returns the number of workers in the pool, caller included.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Closed reports whether Close was called.
func (p *Pool) Closed() bool {
	return p.closed.Load()
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return
	}
	p.closed.Store(true)
	close(p.workC)
}

// fanOut runs loop on up to `workers` goroutines, the caller being one of
// them, and blocks until all that started have returned. Helper slots that
// no idle worker claimed by the time the caller's own loop finished are
// withdrawn, which keeps nested submissions from waiting on busy workers.
func (p *Pool) fanOut(workers int, loop func()) {
	if workers <= 1 {
		loop()
		return
	}

	helpers := workers - 1
	var claims atomic.Int32
	claims.Store(int32(helpers))
	doneC := make(chan struct{}, helpers)

	item := workItem{fn: func() {
		if claims.Add(-1) < 0 {
			return
		}
		loop()
		doneC <- struct{}{}
	}}
	p.mu.RLock()
	if !p.closed.Load() {
		for range helpers {
			// A full queue means every worker is busy; the slot stays unclaimed.
			select {
			case p.workC <- item:
			default:
			}
		}
	}
	p.mu.RUnlock()
	loop()

	unclaimed := max(0, int(claims.Swap(-int32(helpers)-1)))
	for range helpers - unclaimed {
		<-doneC
	}
}

// ParallelFor executes fn over [0, n) split into min(NumWorkers, n)
// contiguous chunks whose sizes differ by at most one, the larger chunks
// first. Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 || p.closed.Load() {
		fn(0, n)
		return
	}

	base, remainder := n/workers, n%workers
	var next atomic.Int32
	p.fanOut(workers, func() {
		for {
			chunk := int(next.Add(1)) - 1
			if chunk >= workers {
				return
			}
			start := chunk*base + min(chunk, remainder)
			end := start + base
			if chunk < remainder {
				end++
			}
			fn(start, end)
		}
	})
}

// Run executes fn(i) exactly once for every i in [0, n), each call as an
// independent task pulled by the next idle worker. Once a call fails no new
// calls are started; calls already running complete. Run blocks until every
// started call returned and reports the error of the lowest failing index.
func (p *Pool) Run(n int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}

	errs := make([]error, n)
	var next atomic.Int32
	var failed atomic.Bool

	p.fanOut(min(p.numWorkers, n), func() {
		for !failed.Load() {
			i := int(next.Add(1)) - 1
			if i >= n {
				return
			}
			if err := fn(i); err != nil {
				errs[i] = err
				failed.Store(true)
			}
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// RunBatched is like Run but hands out batchSize consecutive indices per
// grab, reducing contention on the shared counter for very cheap tasks.
func (p *Pool) RunBatched(n, batchSize int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	numBatches := (n + batchSize - 1) / batchSize
	return p.Run(numBatches, func(batch int) error {
		start := batch * batchSize
		return fn(start, min(start+batchSize, n))
	})
}
