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

// Package par implements a parallel map-partition-reduce harness.
//
// A workload of N uniform units is split into balanced contiguous ranges by
// Partition, each range is handed to a Kernel by a Driver, and the partial
// results are recombined in original index order by a Combiner. Three drivers
// are interchangeable:
//
//   - Sequential: an in-order loop, used as the correctness reference.
//   - Shared: a persistent goroutine pool over shared memory.
//   - Distributed: a fixed-size process group (see package comm) that
//     scatters halo-extended chunks from rank 0, runs a nested Shared driver
//     on every rank and gathers the results back.
//
// Given the same input all three produce the same output: bit-for-bit for
// exact kernels (sorting, labeling, hulls) and within a tolerance for
// floating point reductions, whose summation order may differ.
//
// # Usage
//
//	d := par.NewShared(0) // 0 means "all hardware threads"
//	defer d.Close()
//
//	parts := par.Parts(par.Partition(len(xs), d.Parallelism()))
//	sum, err := par.Execute(ctx, d, parts,
//	    func(ctx context.Context, p par.Part) (float64, error) {
//	        var s float64
//	        for _, x := range xs[p.Range.Start:p.Range.End()] {
//	            s += x
//	        }
//	        return s, nil
//	    },
//	    merge.Sum[float64],
//	)
//
// # Configuration
//
// DefaultConfig and ConfigFromEnv build a Config; the environment variables
// PAR_BACKEND, PAR_MAX_PARALLELISM, PAR_RANKS and PAR_LOG_LEVEL override the
// defaults. NewDriver turns a Config into a Driver.
package par
