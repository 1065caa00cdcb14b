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

import "fmt"

// Range is the half-open interval [Start, Start+Len) of a 1-D buffer.
type Range struct {
	Start int
	Len   int
}

// End returns the exclusive end of the range.
func (r Range) End() int {
	return r.Start + r.Len
}

// Empty returns true if the range holds no elements.
func (r Range) Empty() bool {
	return r.Len <= 0
}

// Contains reports whether i lies inside the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End()
}

// Shift returns the range moved by offset.
func (r Range) Shift(offset int) Range {
	return Range{Start: r.Start + offset, Len: r.Len}
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End())
}

// Partition splits [0, n) into min(p, n) contiguous ranges whose lengths
// differ by at most one. The first n%p ranges receive the extra element.
//
// p < 1 is treated as 1. n <= 0 returns nil: there is no work and no worker.
func Partition(n, p int) []Range {
	if n <= 0 {
		return nil
	}
	if p < 1 {
		p = 1
	}
	workers := min(p, n)

	base := n / workers
	remainder := n % workers

	ranges := make([]Range, workers)
	start := 0
	for i := range workers {
		length := base
		if i < remainder {
			length++
		}
		ranges[i] = Range{Start: start, Len: length}
		start += length
	}
	return ranges
}

// PartitionGrain is like Partition but never creates ranges shorter than
// grain elements, reducing the worker count instead. Kernels with a fixed
// per-range overhead (row strips, sorting networks) use it to avoid
// fragmenting small inputs.
func PartitionGrain(n, p, grain int) []Range {
	if grain > 1 && n > 0 {
		p = min(p, max(1, n/grain))
	}
	return Partition(n, p)
}

// CheckCover verifies that ranges tile [0, n) exactly once, in increasing
// order, without gaps or overlaps.
func CheckCover(ranges []Range, n int) error {
	next := 0
	for i, r := range ranges {
		if r.Len < 0 {
			return fmt.Errorf("range %d %v has negative length", i, r)
		}
		if r.Start != next {
			return fmt.Errorf("range %d %v starts at %d, want %d", i, r, r.Start, next)
		}
		next = r.End()
	}
	if next != max(n, 0) {
		return fmt.Errorf("ranges cover [0,%d), want [0,%d)", next, n)
	}
	return nil
}
