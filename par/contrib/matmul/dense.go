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

// Package matmul provides row-strip parallel matrix multiplication tasks for
// dense row-major matrices and for sparse matrices in compressed row
// storage (CRS).
//
// Dense products map strips of A rows to strips of C rows: every strip only
// reads its rows of A and all of B, and only writes its rows of C. Sparse
// products partition the rows of A; each range produces the CRS rows of its
// strip of C, and the strips are concatenated in row order.
package matmul

import (
	"context"

	"github.com/ajroetker/go-par/par"
)

// MulRows computes the rows owned of C = A * B, where A is m x k (only the
// rows in owned are read), B is k x n and c holds exactly the owned rows.
func MulRows(a, b, c []float64, owned par.Range, n, k int) {
	clear(c[:owned.Len*n])
	for i := owned.Start; i < owned.End(); i++ {
		row := c[(i-owned.Start)*n : (i-owned.Start+1)*n]
		for p := range k {
			aip := a[i*k+p]
			if aip == 0 {
				continue
			}
			for j := range n {
				row[j] += aip * b[p*n+j]
			}
		}
	}
}

// Mul computes C = A * B on d, where A is m x k, B is k x n and C is m x n,
// all row-major.
func Mul(ctx context.Context, d par.Driver, a, b, c []float64, m, n, k int) error {
	if len(a) != m*k || len(b) != k*n || len(c) != m*n {
		return par.Invalid("matmul shapes: len(a)=%d len(b)=%d len(c)=%d for m=%d n=%d k=%d", len(a), len(b), len(c), m, n, k)
	}
	if m == 0 || n == 0 {
		return nil
	}
	if k == 0 {
		clear(c)
		return nil
	}
	return par.Map(ctx, d, a, c, par.Layout{Unit: k, OutUnit: n},
		func(ctx context.Context, a []float64, owned par.Range, c []float64) error {
			MulRows(a, b, c, owned, n, k)
			return nil
		})
}
