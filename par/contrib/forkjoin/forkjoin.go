// Copyright 2025 go-par Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package forkjoin provides a bounded fork-join primitive for recursive
// divide-and-conquer kernels.
//
// A Pool has a declared fan-out limit. Forking a branch starts a goroutine
// only while fewer than the limit are running; otherwise the branch runs
// inline on the caller. Recursion therefore never needs a depth counter:
// once the pool is saturated, the remaining recursion is sequential.
//
//	pool := forkjoin.New(8)
//	var sort func(a []int32) error
//	sort = func(a []int32) error {
//	    if len(a) < cutoff {
//	        insertion(a)
//	        return nil
//	    }
//	    p := partition(a)
//	    g := pool.Group()
//	    g.Fork(func() error { return sort(a[:p]) })
//	    g.Fork(func() error { return sort(a[p:]) })
//	    return g.Join()
//	}
package forkjoin

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool bounds the number of goroutines started by its groups.
type Pool struct {
	// limit is the fan-out limit: the maximum number of forked branches
	// running at once. 1 runs everything inline.
	limit int

	mu      sync.Mutex
	running int

	// joining counts branches blocked in Join. They hold no CPU, so each one
	// temporarily lends its slot to a new branch.
	joining atomic.Int32
}

// New creates a pool with the given fan-out limit. limit <= 0 uses
// GOMAXPROCS.
func New(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &Pool{limit: limit}
}

// Limit returns the fan-out limit.
func (p *Pool) Limit() int {
	return p.limit
}

// Running returns the number of forked branches currently running.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// lockedIsFull returns whether no more branches may start (must hold lock).
func (p *Pool) lockedIsFull() bool {
	return p.running >= p.limit-1+int(p.joining.Load())
}

// lockedRun starts task in a goroutine (must hold lock).
func (p *Pool) lockedRun(task func()) {
	p.running++
	go func() {
		task()
		p.mu.Lock()
		p.running--
		p.mu.Unlock()
	}()
}

// StartIfAvailable runs task on a new goroutine if the pool has room and
// reports whether it did.
func (p *Pool) StartIfAvailable(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lockedIsFull() {
		return false
	}
	p.lockedRun(task)
	return true
}

// Group returns a new fork-join scope on the pool.
func (p *Pool) Group() *Group {
	return &Group{pool: p}
}

// Group joins a set of forked branches. The zero value is not usable; get
// one from Pool.Group. A Group must not be reused after Join.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup

	errOnce sync.Once
	err     error
}

func (g *Group) record(err error) {
	if err != nil {
		g.errOnce.Do(func() { g.err = err })
	}
}

// Fork runs fn on a new goroutine when the pool has room, inline otherwise.
func (g *Group) Fork(fn func() error) {
	g.wg.Add(1)
	started := g.pool.StartIfAvailable(func() {
		defer g.wg.Done()
		g.record(fn())
	})
	if !started {
		g.record(fn())
		g.wg.Done()
	}
}

// Join waits for every forked branch and returns the first error recorded.
func (g *Group) Join() error {
	g.pool.joining.Add(1)
	g.wg.Wait()
	g.pool.joining.Add(-1)
	return g.err
}
