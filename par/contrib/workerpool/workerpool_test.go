// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumWorkers(t *testing.T) {
	for _, tc := range []struct{ in, want int }{
		{4, 4},
		{1, 1},
		{0, runtime.GOMAXPROCS(0)},
		{-3, runtime.GOMAXPROCS(0)},
	} {
		pool := New(tc.in)
		assert.Equal(t, tc.want, pool.NumWorkers(), "New(%d)", tc.in)
		pool.Close()
	}
}

// chunks records the [start, end) pairs ParallelFor hands out.
func chunks(pool *Pool, n int) map[int]int {
	var mu sync.Mutex
	got := make(map[int]int)
	pool.ParallelFor(n, func(start, end int) {
		mu.Lock()
		got[start] = end
		mu.Unlock()
	})
	return got
}

func TestParallelForChunks(t *testing.T) {
	tests := []struct {
		workers, n int
		want       map[int]int
	}{
		{3, 10, map[int]int{0: 4, 4: 7, 7: 10}},
		{4, 8, map[int]int{0: 2, 2: 4, 4: 6, 6: 8}},
		{8, 3, map[int]int{0: 1, 1: 2, 2: 3}},
		{1, 5, map[int]int{0: 5}},
		{4, 0, map[int]int{}},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("workers=%d/n=%d", tc.workers, tc.n), func(t *testing.T) {
			pool := New(tc.workers)
			defer pool.Close()
			assert.Equal(t, tc.want, chunks(pool, tc.n))
		})
	}
}

func TestRunCallsEachIndexOnce(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var calls [257]atomic.Int32
	require.NoError(t, pool.Run(len(calls), func(i int) error {
		calls[i].Add(1)
		return nil
	}))
	for i := range calls {
		assert.Equal(t, int32(1), calls[i].Load(), "index %d", i)
	}
	assert.NoError(t, pool.Run(0, func(i int) error { return errors.New("never called") }))
}

func TestRunReportsLowestFailingIndex(t *testing.T) {
	errLow, errHigh := errors.New("low"), errors.New("high")
	for _, workers := range []int{1, 4} {
		pool := New(workers)
		err := pool.Run(10, func(i int) error {
			switch i {
			case 3:
				return errLow
			case 7:
				return errHigh
			}
			return nil
		})
		pool.Close()
		// Indices are claimed in order, so 3 always runs if 7 does.
		assert.ErrorIs(t, err, errLow, "workers=%d", workers)
	}
}

func TestRunNested(t *testing.T) {
	pool := New(2)
	defer pool.Close()

	var total atomic.Int32
	require.NoError(t, pool.Run(4, func(i int) error {
		return pool.Run(4, func(j int) error {
			total.Add(1)
			return nil
		})
	}))
	assert.Equal(t, int32(16), total.Load())
}

func TestRunBatched(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	covered := make([]int32, 100)
	var batches atomic.Int32
	require.NoError(t, pool.RunBatched(len(covered), 7, func(start, end int) error {
		batches.Add(1)
		assert.LessOrEqual(t, end-start, 7)
		for i := start; i < end; i++ {
			atomic.AddInt32(&covered[i], 1)
		}
		return nil
	}))
	assert.Equal(t, int32(15), batches.Load())
	for i, c := range covered {
		assert.Equal(t, int32(1), c, "index %d", i)
	}

	boom := errors.New("boom")
	err := pool.RunBatched(10, 0, func(start, end int) error {
		assert.Equal(t, 1, end-start, "batch size <= 0 means 1")
		if start == 5 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestClosedPool(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()
	assert.True(t, pool.Closed())

	// Work still runs, on the caller.
	sum := 0
	require.NoError(t, pool.Run(100, func(i int) error {
		sum += i
		return nil
	}))
	assert.Equal(t, 4950, sum)
	assert.Equal(t, map[int]int{0: 100}, chunks(pool, 100))
}

func TestCloseWhileRunning(t *testing.T) {
	for range 50 {
		pool := New(4)
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					var calls atomic.Int32
					err := pool.Run(16, func(i int) error {
						calls.Add(1)
						return nil
					})
					assert.NoError(t, err)
					assert.Equal(t, int32(16), calls.Load())
				}
			}()
		}
		pool.Close()
		wg.Wait()
		assert.True(t, pool.Closed())
	}
}

func BenchmarkRun(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	for _, n := range []int{8, 1000} {
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			for range b.N {
				_ = pool.Run(n, func(i int) error {
					_ = i * i
					return nil
				})
			}
		})
	}
}
