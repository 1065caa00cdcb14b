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
	"errors"
)

// Execute runs k over parts on d and reduces the partial results with c.
// It walks the Execution state machine: a kernel or combiner error moves it
// to StateFailed and no result is returned.
func Execute[P, R any](ctx context.Context, d Driver, parts []Part, k Kernel[P], c Combiner[P, R]) (R, error) {
	var zero R
	exec := NewExecution(d.Name())

	if err := exec.Advance(StatePartitioned); err != nil {
		return zero, err
	}
	if err := exec.Advance(StateDispatched); err != nil {
		return zero, err
	}
	partials, err := Collect(ctx, d, parts, k)
	if err != nil {
		return zero, exec.Fail(err)
	}
	if err := exec.Advance(StateJoined); err != nil {
		return zero, err
	}

	result, err := c(ctx, partials)
	if err != nil {
		return zero, exec.Fail(err)
	}
	if err := exec.Advance(StateCombined); err != nil {
		return zero, err
	}
	if err := exec.Advance(StateDone); err != nil {
		return zero, err
	}
	return result, nil
}

// Collect runs k once per part and returns the partial results in part
// order. A failing kernel is reported as a *KernelError.
func Collect[P any](ctx context.Context, d Driver, parts []Part, k Kernel[P]) ([]P, error) {
	if dd, ok := d.(*Distributed); ok {
		return collectDistributed(ctx, dd, parts, k)
	}
	return collectLocal(ctx, d, parts, k)
}

func collectLocal[P any](ctx context.Context, d Driver, parts []Part, k Kernel[P]) ([]P, error) {
	out := make([]P, len(parts))
	err := d.Dispatch(ctx, len(parts), func(ctx context.Context, i int) error {
		v, err := k(ctx, parts[i])
		if err != nil {
			return wrapKernelError(parts[i], err)
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func wrapKernelError(p Part, err error) error {
	var ke *KernelError
	if errors.As(err, &ke) {
		return err
	}
	return &KernelError{Part: p, Err: err}
}

// Map partitions src into len(src)/Unit units by d.Parallelism(), calls k
// for every range and lets it write the matching slice of dst, so every
// element of dst is written exactly once. len(src) must be a multiple of
// Unit and len(dst) must hold OutUnit elements per unit.
func Map[T, U any](ctx context.Context, d Driver, src []T, dst []U, layout Layout, k SliceKernel[T, U]) error {
	unit, outUnit := layout.unit(), layout.outUnit()
	n := len(src) / unit
	if len(src) != n*unit {
		return Invalid("source length %d is not a multiple of unit %d", len(src), unit)
	}
	if len(dst) != n*outUnit {
		return Invalid("destination length %d, want %d units of %d", len(dst), n, outUnit)
	}

	exec := NewExecution(d.Name())
	if err := exec.Advance(StatePartitioned); err != nil {
		return err
	}
	if err := exec.Advance(StateDispatched); err != nil {
		return err
	}

	var err error
	if dd, ok := d.(*Distributed); ok {
		err = mapDistributed(ctx, dd, src, dst, n, layout, k)
	} else {
		err = mapLocal(ctx, d, src, Range{Start: 0, Len: n}, dst, layout, k)
	}
	if err != nil {
		return exec.Fail(err)
	}

	// Kernels wrote their disjoint slices of dst directly.
	for _, s := range []State{StateJoined, StateCombined, StateDone} {
		if err := exec.Advance(s); err != nil {
			return err
		}
	}
	return nil
}

// mapLocal partitions the owned units of src on d. dst holds the output of
// the owned units only.
func mapLocal[T, U any](ctx context.Context, d Driver, src []T, owned Range, dst []U, layout Layout, k SliceKernel[T, U]) error {
	outUnit := layout.outUnit()
	ranges := Partition(owned.Len, d.Parallelism())
	return d.Dispatch(ctx, len(ranges), func(ctx context.Context, i int) error {
		r := ranges[i].Shift(owned.Start)
		lo := ranges[i].Start * outUnit
		hi := ranges[i].End() * outUnit
		if err := k(ctx, src, r, dst[lo:hi:hi]); err != nil {
			return wrapKernelError(Part{Index: i, Range: r}, err)
		}
		return nil
	})
}
