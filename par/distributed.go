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
	"sync"

	"github.com/ajroetker/go-par/par/comm"
)

// Distributed runs work on a fixed-size process group. Rank 0 owns the
// input: it partitions the work across ranks, scatters each rank its share
// (with halos for stencils), every rank runs its share on a local Shared
// driver, and the results are gathered back to rank 0 at the offsets the
// partition assigned. Ranks beyond the number of ranges needed are split off
// the computation communicator and do no work.
//
// A Distributed driver runs one program at a time; concurrent calls are
// serialized. Kernels must not dispatch on the same Distributed driver.
type Distributed struct {
	mu    sync.Mutex
	world *comm.World
	local []*Shared
}

// NewDistributed creates a group of ranks processes, each with a local pool
// of localParallelism workers. localParallelism <= 0 divides the hardware
// threads evenly between the ranks.
func NewDistributed(ranks, localParallelism int) *Distributed {
	ranks = max(1, ranks)
	if localParallelism <= 0 {
		localParallelism = max(1, HardwareThreads()/ranks)
	}
	d := &Distributed{world: comm.NewWorld(ranks), local: make([]*Shared, ranks)}
	for r := range d.local {
		d.local[r] = NewShared(localParallelism)
	}
	return d
}

// Name implements Driver.
func (d *Distributed) Name() string {
	return "distributed"
}

// Ranks returns the size of the process group.
func (d *Distributed) Ranks() int {
	return d.world.Size()
}

// Parallelism implements Driver: ranks times local workers.
func (d *Distributed) Parallelism() int {
	return d.world.Size() * d.local[0].Parallelism()
}

// Close releases the local pools.
func (d *Distributed) Close() {
	for _, s := range d.local {
		s.Close()
	}
}

// group runs body on the ranks that receive a share of n units. blocks is
// the rank-level partition of [0, n), identical on every rank.
func (d *Distributed) group(ctx context.Context, n int, body func(ctx context.Context, sub *comm.Comm, blocks []Range) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.world.Run(ctx, func(ctx context.Context, c *comm.Comm) error {
		n, err := comm.Bcast(ctx, c, 0, n)
		if err != nil {
			return err
		}
		blocks := Partition(n, c.Size())

		color := comm.Undefined
		if c.Rank() < len(blocks) {
			color = 0
		}
		sub, err := c.Split(ctx, color, c.Rank())
		if err != nil || sub == nil {
			return err
		}
		return body(ctx, sub, blocks)
	})
}

// blockTables returns element counts and displacements of blocks of units.
func blockTables(blocks []Range, unit int) (counts, displs []int) {
	counts = make([]int, len(blocks))
	displs = make([]int, len(blocks))
	for i, b := range blocks {
		counts[i] = b.Len * unit
		displs[i] = b.Start * unit
	}
	return counts, displs
}

// lowestFailure keeps the error of the lowest failing index reported by
// any rank.
type lowestFailure struct {
	mu    sync.Mutex
	index int
	err   error
}

func (f *lowestFailure) record(index int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil || index < f.index {
		f.index, f.err = index, err
	}
}

// or returns the recorded failure, if any, else err.
func (f *lowestFailure) or(err error) error {
	if f.err != nil {
		return f.err
	}
	return err
}

// recordFailures wraps k so that its failures are recorded in f by part
// index.
func recordFailures[P any](k Kernel[P], f *lowestFailure) Kernel[P] {
	return func(ctx context.Context, p Part) (P, error) {
		v, err := k(ctx, p)
		if err != nil {
			err = wrapKernelError(p, err)
			f.record(p.Index, err)
		}
		return v, err
	}
}

// Dispatch implements Driver. Rank 0 scatters contiguous blocks of indices;
// every rank runs its block on its local pool. The first failure cancels the
// other ranks.
func (d *Distributed) Dispatch(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	var failure lowestFailure
	err := d.group(ctx, n, func(ctx context.Context, sub *comm.Comm, blocks []Range) error {
		counts, displs := blockTables(blocks, 1)
		mine, err := comm.Scatterv(ctx, sub, 0, indices, counts, displs)
		if err != nil {
			return err
		}
		return d.local[sub.Rank()].Dispatch(ctx, len(mine), func(ctx context.Context, i int) error {
			err := fn(ctx, mine[i])
			if err != nil {
				failure.record(mine[i], err)
			}
			return err
		})
	})
	return failure.or(err)
}

// collectDistributed scatters part descriptors, computes the partials on
// every rank and gathers them to rank 0 in part order.
func collectDistributed[P any](ctx context.Context, d *Distributed, parts []Part, k Kernel[P]) ([]P, error) {
	out := make([]P, len(parts))
	var failure lowestFailure
	err := d.group(ctx, len(parts), func(ctx context.Context, sub *comm.Comm, blocks []Range) error {
		counts, displs := blockTables(blocks, 1)
		mine, err := comm.Scatterv(ctx, sub, 0, parts, counts, displs)
		if err != nil {
			return err
		}
		local, err := collectLocal(ctx, d.local[sub.Rank()], mine, recordFailures(k, &failure))
		if err != nil {
			return err
		}
		return comm.Gatherv(ctx, sub, 0, local, counts, displs, out)
	})
	if err := failure.or(err); err != nil {
		return nil, err
	}
	return out, nil
}

// mapDistributed scatters halo-extended chunks of src, runs a nested local
// Map over the owned units of each chunk and gathers the owned outputs into
// dst. Scatter and gather tables are both generated from the same halo
// partition, so gathered data lands exactly on the owned offsets.
func mapDistributed[T, U any](ctx context.Context, d *Distributed, src []T, dst []U, n int, layout Layout, k SliceKernel[T, U]) error {
	return d.group(ctx, n, func(ctx context.Context, sub *comm.Comm, blocks []Range) error {
		halos := make([]HaloRange, len(blocks))
		for i, b := range blocks {
			halos[i] = HaloRange{Owned: b, Halo: max(0, layout.Halo)}
		}
		in := Tables(halos, n, layout.unit())
		out := Tables(halos, n, layout.outUnit())

		chunk, err := comm.Scatterv(ctx, sub, 0, src, in.ScatterCounts, in.ScatterDispls)
		if err != nil {
			return err
		}
		h := halos[sub.Rank()]
		local := make([]U, h.Owned.Len*layout.outUnit())
		if err := mapLocal(ctx, d.local[sub.Rank()], chunk, h.Local(), local, layout, k); err != nil {
			return err
		}
		return comm.Gatherv(ctx, sub, 0, local, out.GatherCounts, out.GatherDispls, dst)
	})
}
