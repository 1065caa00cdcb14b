// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package par

import (
	"context"

	"github.com/ajroetker/go-par/par/comm"
)

// Reduce runs k over parts on d and folds the partial results with op, in
// part order. op must be associative. An empty parts list reduces to the
// zero value.
//
// Under the distributed backend every rank folds its own share and the
// rank results are combined with an all-reduce, so only one value per rank
// travels back instead of one per part.
func Reduce[P any](ctx context.Context, d Driver, parts []Part, k Kernel[P], op func(a, b P) P) (P, error) {
	dd, ok := d.(*Distributed)
	if !ok {
		return Execute(ctx, d, parts, k, func(_ context.Context, partials []P) (P, error) {
			return fold(partials, op), nil
		})
	}

	var zero P
	exec := NewExecution(d.Name())
	for _, s := range []State{StatePartitioned, StateDispatched} {
		if err := exec.Advance(s); err != nil {
			return zero, err
		}
	}
	result, err := reduceDistributed(ctx, dd, parts, k, op)
	if err != nil {
		return zero, exec.Fail(err)
	}
	for _, s := range []State{StateJoined, StateCombined, StateDone} {
		if err := exec.Advance(s); err != nil {
			return zero, err
		}
	}
	return result, nil
}

func fold[P any](partials []P, op func(a, b P) P) P {
	var acc P
	for i, p := range partials {
		if i == 0 {
			acc = p
			continue
		}
		acc = op(acc, p)
	}
	return acc
}

func reduceDistributed[P any](ctx context.Context, d *Distributed, parts []Part, k Kernel[P], op func(a, b P) P) (P, error) {
	var result P
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
		acc, err := comm.Allreduce(ctx, sub, fold(local, op), op)
		if err != nil {
			return err
		}
		if sub.Rank() == 0 {
			result = acc
		}
		return nil
	})
	return result, failure.or(err)
}
