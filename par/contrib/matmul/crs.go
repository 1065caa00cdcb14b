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

package matmul

import (
	"context"

	"github.com/ajroetker/go-par/par"
)

// CRS is a sparse matrix in compressed row storage. The non-zeros of row i
// are Values[RowPtr[i]:RowPtr[i+1]], in the columns ColIdx[RowPtr[i]:RowPtr[i+1]].
type CRS struct {
	Rows, Cols int
	Values     []float64
	ColIdx     []int32
	RowPtr     []int32
}

// FromDense builds the CRS form of a row-major dense matrix, dropping
// zeros.
func FromDense(rows, cols int, dense []float64) CRS {
	m := CRS{Rows: rows, Cols: cols, RowPtr: make([]int32, rows+1)}
	for i := range rows {
		for j := range cols {
			if v := dense[i*cols+j]; v != 0 {
				m.Values = append(m.Values, v)
				m.ColIdx = append(m.ColIdx, int32(j))
			}
		}
		m.RowPtr[i+1] = int32(len(m.Values))
	}
	return m
}

// Dense returns the row-major dense form of m.
func (m CRS) Dense() []float64 {
	dense := make([]float64, m.Rows*m.Cols)
	for i := range m.Rows {
		for p := m.RowPtr[i]; p < m.RowPtr[i+1]; p++ {
			dense[i*m.Cols+int(m.ColIdx[p])] = m.Values[p]
		}
	}
	return dense
}

// NNZ returns the number of stored values.
func (m CRS) NNZ() int {
	return len(m.Values)
}

// Validate checks the structure of m: a monotone row pointer covering the
// values, and column indices in range.
func (m CRS) Validate() error {
	if m.Rows < 0 || m.Cols < 0 {
		return par.Invalid("negative CRS shape %dx%d", m.Rows, m.Cols)
	}
	if len(m.RowPtr) != m.Rows+1 {
		return par.Invalid("CRS row pointer has %d entries for %d rows", len(m.RowPtr), m.Rows)
	}
	if len(m.ColIdx) != len(m.Values) {
		return par.Invalid("CRS has %d values but %d column indices", len(m.Values), len(m.ColIdx))
	}
	if m.RowPtr[0] != 0 || int(m.RowPtr[m.Rows]) != len(m.Values) {
		return par.Invalid("CRS row pointer spans [%d, %d), want [0, %d)", m.RowPtr[0], m.RowPtr[m.Rows], len(m.Values))
	}
	for i := range m.Rows {
		if m.RowPtr[i] > m.RowPtr[i+1] {
			return par.Invalid("CRS row pointer decreases at row %d", i)
		}
	}
	for p, j := range m.ColIdx {
		if j < 0 || int(j) >= m.Cols {
			return par.Invalid("CRS column index %d at %d outside %d columns", j, p, m.Cols)
		}
	}
	return nil
}

// strip is the CRS form of a contiguous range of rows of a product.
type strip struct {
	Values []float64
	ColIdx []int32
	RowNNZ []int32
}

// accumulator is a dense row accumulator with a list of touched columns.
type accumulator struct {
	sums    []float64
	touched []bool
	cols    []int32
}

func newAccumulator(n int) *accumulator {
	return &accumulator{sums: make([]float64, n), touched: make([]bool, n)}
}

// mulStrip computes rows r of A * B.
func mulStrip(a, b CRS, r par.Range, acc *accumulator) strip {
	s := strip{RowNNZ: make([]int32, r.Len)}
	for i := r.Start; i < r.End(); i++ {
		acc.cols = acc.cols[:0]
		for p := a.RowPtr[i]; p < a.RowPtr[i+1]; p++ {
			aik, k := a.Values[p], a.ColIdx[p]
			for q := b.RowPtr[k]; q < b.RowPtr[k+1]; q++ {
				j := b.ColIdx[q]
				if !acc.touched[j] {
					acc.touched[j] = true
					acc.cols = append(acc.cols, j)
				}
				acc.sums[j] += aik * b.Values[q]
			}
		}
		insertion(acc.cols)
		for _, j := range acc.cols {
			if v := acc.sums[j]; v != 0 {
				s.Values = append(s.Values, v)
				s.ColIdx = append(s.ColIdx, j)
				s.RowNNZ[i-r.Start]++
			}
			acc.sums[j] = 0
			acc.touched[j] = false
		}
	}
	return s
}

// insertion sorts the touched columns of one row, usually few.
func insertion(cols []int32) {
	for i := 1; i < len(cols); i++ {
		key := cols[i]
		j := i - 1
		for j >= 0 && cols[j] > key {
			cols[j+1] = cols[j]
			j--
		}
		cols[j+1] = key
	}
}

// concat joins the strips in row order into one CRS matrix.
func concat(rows, cols int, strips []strip) CRS {
	m := CRS{Rows: rows, Cols: cols, RowPtr: make([]int32, 1, rows+1)}
	for _, s := range strips {
		m.Values = append(m.Values, s.Values...)
		m.ColIdx = append(m.ColIdx, s.ColIdx...)
		for _, nnz := range s.RowNNZ {
			m.RowPtr = append(m.RowPtr, m.RowPtr[len(m.RowPtr)-1]+nnz)
		}
	}
	return m
}

// MulSparse computes the CRS product A * B on d.
func MulSparse(ctx context.Context, d par.Driver, a, b CRS) (CRS, error) {
	if err := a.Validate(); err != nil {
		return CRS{}, err
	}
	if err := b.Validate(); err != nil {
		return CRS{}, err
	}
	if a.Cols != b.Rows {
		return CRS{}, par.Invalid("inner dimensions differ: %dx%d * %dx%d", a.Rows, a.Cols, b.Rows, b.Cols)
	}

	ranges := par.Partition(a.Rows, d.Parallelism())
	accs := par.NewScratch(len(ranges), func() *accumulator { return newAccumulator(b.Cols) })
	return par.Execute(ctx, d, par.Parts(ranges),
		func(ctx context.Context, p par.Part) (strip, error) {
			return mulStrip(a, b, p.Range, accs.Get(p.Index)), nil
		},
		func(ctx context.Context, strips []strip) (CRS, error) {
			return concat(a.Rows, b.Cols, strips), nil
		})
}
