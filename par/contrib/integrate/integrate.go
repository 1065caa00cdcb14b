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

// Package integrate provides parallel numerical integration: the composite
// Simpson rule in one dimension and the midpoint rectangle rule over 2-D
// boxes.
//
// Both rules are reductions. Every range of sample points produces a
// partial weighted sum and the partials are added in range order, so the
// result may differ from the sequential one by rounding only.
package integrate

import (
	"context"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/contrib/merge"
)

// Func is a function of one variable.
type Func func(x float64) float64

// Func2 is a function of two variables.
type Func2 func(x, y float64) float64

// Box is the rectangle [X0, X1] x [Y0, Y1].
type Box struct {
	X0, X1, Y0, Y1 float64
}

// Simpson integrates f over [a, b] with the composite Simpson rule on n
// subintervals. n must be even and positive.
func Simpson(ctx context.Context, d par.Driver, f Func, a, b float64, n int) (float64, error) {
	if n <= 0 || n%2 != 0 {
		return 0, par.Invalid("simpson needs an even, positive number of subintervals, got %d", n)
	}
	h := (b - a) / float64(n)

	// Interior points 1..n-1 carry weight 4 (odd) or 2 (even).
	ranges := par.Partition(n-1, d.Parallelism())
	for i := range ranges {
		ranges[i] = ranges[i].Shift(1)
	}
	interior, err := par.Execute(ctx, d, par.Parts(ranges),
		func(ctx context.Context, p par.Part) (float64, error) {
			var sum float64
			for i := p.Range.Start; i < p.Range.End(); i++ {
				w := 2.0
				if i%2 == 1 {
					w = 4
				}
				sum += w * f(a+float64(i)*h)
			}
			return sum, nil
		},
		merge.Sum[float64])
	if err != nil {
		return 0, err
	}
	return h / 3 * (f(a) + interior + f(b)), nil
}

// Midpoint integrates f over box with the midpoint rule on an nx by ny
// grid of cells. The grid is split into 2-D blocks, one per unit of
// parallelism.
func Midpoint(ctx context.Context, d par.Driver, f Func2, box Box, nx, ny int) (float64, error) {
	if nx <= 0 || ny <= 0 {
		return 0, par.Invalid("midpoint needs a positive grid, got %dx%d", nx, ny)
	}
	hx := (box.X1 - box.X0) / float64(nx)
	hy := (box.Y1 - box.Y0) / float64(ny)

	pr, pc := par.GridShape(d.Parallelism())
	blocks := par.Partition2D(ny, nx, pr, pc)
	parts := make([]par.Part, len(blocks))
	for i, blk := range blocks {
		parts[i] = par.Part{Index: i, Range: blk.RowRange()}
	}
	sum, err := par.Execute(ctx, d, parts,
		func(ctx context.Context, p par.Part) (float64, error) {
			blk := blocks[p.Index]
			var sum float64
			for j := blk.Row0; j < blk.Row0+blk.Rows; j++ {
				y := box.Y0 + (float64(j)+0.5)*hy
				for i := blk.Col0; i < blk.Col0+blk.Cols; i++ {
					sum += f(box.X0+(float64(i)+0.5)*hx, y)
				}
			}
			return sum, nil
		},
		merge.Sum[float64])
	if err != nil {
		return 0, err
	}
	return sum * hx * hy, nil
}

var funcs = map[string]Func{
	"sin":   math.Sin,
	"exp":   math.Exp,
	"cubic": func(x float64) float64 { return x*x*x - 2*x + 1 },
	"gauss": func(x float64) float64 { return math.Exp(-x * x) },
}

var funcs2 = map[string]Func2{
	"xy":    func(x, y float64) float64 { return x * y },
	"sinxy": func(x, y float64) float64 { return math.Sin(x) * math.Cos(y) },
	"gauss": func(x, y float64) float64 { return math.Exp(-x*x - y*y) },
}

// Named returns the built-in integrand called name.
func Named(name string) (Func, bool) {
	f, ok := funcs[name]
	return f, ok
}

// Named2 returns the built-in two-variable integrand called name.
func Named2(name string) (Func2, bool) {
	f, ok := funcs2[name]
	return f, ok
}

// Names returns the names of the built-in integrands, sorted.
func Names() []string {
	names := lo.Keys(funcs)
	slices.Sort(names)
	return names
}

// Names2 returns the names of the built-in two-variable integrands, sorted.
func Names2() []string {
	names := lo.Keys(funcs2)
	slices.Sort(names)
	return names
}
