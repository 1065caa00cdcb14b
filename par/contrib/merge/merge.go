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

// Package merge provides combiners that reduce ordered partial results into
// a final output.
//
// Element-wise kernels use Scatter or Concat, reductions use Sum, and sort
// kernels use one of the merge networks: Tree pairs adjacent sorted runs
// bottom-up, OddEven runs Batcher's odd-even block merge. Both networks
// dispatch the independent merges of one level through a par.Driver and
// join before the next level starts.
package merge

import (
	"cmp"
	"context"

	"github.com/samber/lo"

	"github.com/ajroetker/go-par/par"
)

// Number is the set of element types Sum accepts.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Sum adds the partials in part order. It is a par.Combiner.
func Sum[T Number](_ context.Context, parts []T) (T, error) {
	return lo.Sum(parts), nil
}

// Concat joins the partials in part order. It is a par.Combiner.
func Concat[T any](_ context.Context, parts [][]T) ([]T, error) {
	return lo.Flatten(parts), nil
}

// Scatter copies each partial into dst at the offset of its range.
func Scatter[T any](dst []T, parts [][]T, ranges []par.Range) error {
	if len(parts) != len(ranges) {
		return par.Invalid("%d partials for %d ranges", len(parts), len(ranges))
	}
	for i, r := range ranges {
		if len(parts[i]) != r.Len {
			return par.Invalid("partial %d has %d elements, range %v", i, len(parts[i]), r)
		}
		if r.End() > len(dst) {
			return par.Invalid("range %v outside destination of %d", r, len(dst))
		}
		copy(dst[r.Start:r.End()], parts[i])
	}
	return nil
}

// TwoWay merges the sorted slices a and b into dst. Equal elements of a come
// first. dst must not overlap a or b.
func TwoWay[T cmp.Ordered](dst, a, b []T) error {
	if len(dst) != len(a)+len(b) {
		return par.Invalid("merge destination has %d elements, want %d", len(dst), len(a)+len(b))
	}
	twoWay(dst, a, b)
	return nil
}

func twoWay[T cmp.Ordered](dst, a, b []T) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if b[j] < a[i] {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}

// Tree merges the sorted runs of data in place. runs must tile data in
// order. Each level merges adjacent pairs of runs concurrently through d; an
// odd run at the end of a level is carried to the next one unchanged.
func Tree[T cmp.Ordered](ctx context.Context, d par.Driver, data []T, runs []par.Range) error {
	if err := par.CheckCover(runs, len(data)); err != nil {
		return err
	}
	if len(runs) < 2 {
		return nil
	}
	tmp := make([]T, len(data))
	for len(runs) > 1 {
		pairs := len(runs) / 2
		err := d.Dispatch(ctx, pairs, func(ctx context.Context, i int) error {
			a, b := runs[2*i], runs[2*i+1]
			buf := tmp[a.Start:b.End()]
			twoWay(buf, data[a.Start:a.End()], data[b.Start:b.End()])
			copy(data[a.Start:b.End()], buf)
			return nil
		})
		if err != nil {
			return err
		}

		next := make([]par.Range, 0, pairs+1)
		for i := range pairs {
			a, b := runs[2*i], runs[2*i+1]
			next = append(next, par.Range{Start: a.Start, Len: a.Len + b.Len})
		}
		if len(runs)%2 == 1 {
			next = append(next, runs[len(runs)-1])
		}
		runs = next
	}
	return nil
}

// OddEven merges the sorted blocks of data in place with Batcher's odd-even
// block merge. Every round runs an even phase, compare-splitting blocks
// (0,1), (2,3), ..., then an odd phase on (1,2), (3,4), .... A compare-split
// leaves each block at its original size, the lower block holding the
// smallest elements of the pair. Merging stops after a round in which no
// block changed, and after at most len(blocks) rounds.
func OddEven[T cmp.Ordered](ctx context.Context, d par.Driver, data []T, blocks []par.Range) error {
	if err := par.CheckCover(blocks, len(data)); err != nil {
		return err
	}
	if len(blocks) < 2 {
		return nil
	}

	pairs := len(blocks) / 2
	widest := 0
	for i := 0; i+1 < len(blocks); i++ {
		widest = max(widest, blocks[i].Len+blocks[i+1].Len)
	}
	scratch := par.NewScratch(pairs, func() []T { return make([]T, widest) })
	changed := make([]bool, pairs)

	phase := func(ctx context.Context, first int) (bool, error) {
		n := (len(blocks) - first) / 2
		clear(changed)
		err := d.Dispatch(ctx, n, func(ctx context.Context, i int) error {
			low, high := blocks[first+2*i], blocks[first+2*i+1]
			changed[i] = compareSplit(data[low.Start:low.End()], data[high.Start:high.End()], scratch.Get(i))
			return nil
		})
		return lo.Contains(changed[:n], true), err
	}

	for range len(blocks) {
		even, err := phase(ctx, 0)
		if err != nil {
			return err
		}
		odd, err := phase(ctx, 1)
		if err != nil {
			return err
		}
		if !even && !odd {
			break
		}
	}
	return nil
}

// compareSplit merges the sorted blocks a and b so that a keeps the
// smallest len(a) elements and b the rest, and reports whether anything
// moved.
func compareSplit[T cmp.Ordered](a, b, buf []T) bool {
	if len(a) == 0 || len(b) == 0 || a[len(a)-1] <= b[0] {
		return false
	}
	buf = buf[:len(a)+len(b)]
	twoWay(buf, a, b)
	copy(a, buf[:len(a)])
	copy(b, buf[len(a):])
	return true
}

// RequirePowerOfTwo returns a validation error unless n is zero or a power
// of two.
func RequirePowerOfTwo(n int) error {
	if n < 0 || n&(n-1) != 0 {
		return par.Invalid("length %d is not a power of two", n)
	}
	return nil
}
