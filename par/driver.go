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

package par

import (
	"context"

	"github.com/ajroetker/go-par/par/contrib/workerpool"
)

// Driver runs independent calls over a shared index space.
type Driver interface {
	// Name identifies the backend ("sequential", "shared", "distributed").
	Name() string

	// Parallelism is the number of ranges the driver can keep busy at once.
	// Callers partition their work by it.
	Parallelism() int

	// Dispatch calls fn exactly once for every i in [0, n) unless a call
	// fails, and returns only after every started call has returned. Once a
	// call fails no new calls start; of the calls that failed, the error of
	// the lowest index is returned.
	Dispatch(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// Sequential runs every call in index order on the caller's goroutine. It
// is the correctness reference the other drivers are compared against.
type Sequential struct{}

// NewSequential returns the sequential driver.
func NewSequential() Sequential {
	return Sequential{}
}

// Name implements Driver.
func (Sequential) Name() string {
	return "sequential"
}

// Parallelism implements Driver. It is always 1.
func (Sequential) Parallelism() int {
	return 1
}

// Dispatch implements Driver. It stops at the first failing call.
func (Sequential) Dispatch(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}

// Shared runs calls on a persistent goroutine pool over shared memory.
type Shared struct {
	pool *workerpool.Pool
}

// NewShared creates a shared-memory driver with the given maximum
// parallelism. maxParallelism <= 0 uses HardwareThreads().
func NewShared(maxParallelism int) *Shared {
	if maxParallelism <= 0 {
		maxParallelism = HardwareThreads()
	}
	return &Shared{pool: workerpool.New(maxParallelism)}
}

// Name implements Driver.
func (s *Shared) Name() string {
	return "shared"
}

// Parallelism implements Driver.
func (s *Shared) Parallelism() int {
	return s.pool.NumWorkers()
}

// Dispatch implements Driver. At most min(Parallelism(), n) calls run at
// once; Dispatch is the barrier that joins them.
func (s *Shared) Dispatch(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if s.pool.Closed() {
		return ErrClosed
	}
	return s.pool.Run(n, func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(ctx, i)
	})
}

// Close releases the pool's goroutines.
func (s *Shared) Close() {
	s.pool.Close()
}
