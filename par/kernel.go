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

import "context"

// Part is one unit of dispatch: a range and its position in the partition.
// Index doubles as the key for per-worker scratch space.
type Part struct {
	Index int
	Range Range
}

// Parts numbers ranges in order.
func Parts(ranges []Range) []Part {
	parts := make([]Part, len(ranges))
	for i, r := range ranges {
		parts[i] = Part{Index: i, Range: r}
	}
	return parts
}

// Kernel computes the partial result of one part. It must be a pure function
// of the part and of read-only shared inputs.
type Kernel[P any] func(ctx context.Context, part Part) (P, error)

// Combiner reduces the partial results, given in part order, into the final
// result.
type Combiner[P, R any] func(ctx context.Context, parts []P) (R, error)

// Layout describes how flat buffers are partitioned by Map: Unit source
// elements form one partitionable unit (1 for vectors, the width for image
// rows, the inner dimension for matrix rows), OutUnit destination elements
// correspond to one unit (defaults to Unit), and Halo units on each side of
// every owned range are readable by the kernel.
type Layout struct {
	Unit    int
	OutUnit int
	Halo    int
}

func (l Layout) unit() int {
	return max(1, l.Unit)
}

func (l Layout) outUnit() int {
	if l.OutUnit <= 0 {
		return l.unit()
	}
	return l.OutUnit
}

// SliceKernel writes dst, the owned.Len*OutUnit output elements of the owned
// range. src is the buffer visible to the worker: the whole input on shared
// memory, the scattered halo-extended chunk on a rank. owned is expressed in
// units of src, and src[owned.Start-Halo : owned.End()+Halo] (clamped) is
// readable.
type SliceKernel[T, U any] func(ctx context.Context, src []T, owned Range, dst []U) error
