// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

const tol = 1e-6

func drivers(t *testing.T) []par.Driver {
	t.Helper()
	shared := par.NewShared(4)
	dist := par.NewDistributed(3, 2)
	t.Cleanup(func() {
		shared.Close()
		dist.Close()
	})
	return []par.Driver{par.NewSequential(), shared, dist}
}

// tripleLoop is the dense reference product.
func tripleLoop(a, b []float64, m, n, k int) []float64 {
	c := make([]float64, m*n)
	for i := range m {
		for j := range n {
			for p := range k {
				c[i*n+j] += a[i*k+p] * b[p*n+j]
			}
		}
	}
	return c
}

func randomDense(rng *rand.Rand, rows, cols int, density float64) []float64 {
	d := make([]float64, rows*cols)
	for i := range d {
		if rng.Float64() < density {
			d[i] = rng.NormFloat64()
		}
	}
	return d
}

func TestMulMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const m, k, n = 37, 19, 23
	a := randomDense(rng, m, k, 1)
	b := randomDense(rng, k, n, 1)

	var want mat.Dense
	want.Mul(mat.NewDense(m, k, a), mat.NewDense(k, n, b))

	for _, d := range drivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			c := make([]float64, m*n)
			require.NoError(t, Mul(context.Background(), d, a, b, c, m, n, k))
			assert.True(t, floats.EqualApprox(want.RawMatrix().Data, c, tol))
		})
	}
}

func TestMulDegenerate(t *testing.T) {
	c := []float64{1, 2, 3, 4}
	require.NoError(t, Mul(context.Background(), par.NewSequential(), nil, nil, c, 2, 2, 0))
	assert.Equal(t, []float64{0, 0, 0, 0}, c)

	assert.ErrorIs(t, Mul(context.Background(), par.NewSequential(), make([]float64, 5), nil, nil, 2, 2, 2), par.ErrValidation)
}

func TestSparseSeedScenario(t *testing.T) {
	// 3x4 times 4x3.
	aDense := []float64{
		1, 0, 0, 2,
		0, 0, 3, 0,
		0, 4, 0, 5,
	}
	bDense := []float64{
		0, 6, 0,
		7, 0, 0,
		0, 0, 8,
		9, 0, 1,
	}
	want := tripleLoop(aDense, bDense, 3, 3, 4)
	a, b := FromDense(3, 4, aDense), FromDense(4, 3, bDense)

	for _, d := range drivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			data := SparseData(a, b)
			st := NewSparseTask(data, d)
			require.NoError(t, task.Pipeline(st))

			got, err := DecodeCRS(data.Out, "c")
			require.NoError(t, err)
			assert.Equal(t, 3, got.Rows)
			assert.Equal(t, 3, got.Cols)
			assert.True(t, floats.EqualApprox(want, got.Dense(), tol), "got %v want %v", got.Dense(), want)
		})
	}
}

func TestSparseRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const m, k, n = 50, 40, 30
	aDense := randomDense(rng, m, k, 0.1)
	bDense := randomDense(rng, k, n, 0.1)
	want := tripleLoop(aDense, bDense, m, n, k)

	for _, d := range drivers(t) {
		c, err := MulSparse(context.Background(), d, FromDense(m, k, aDense), FromDense(k, n, bDense))
		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.True(t, floats.EqualApprox(want, c.Dense(), tol), d.Name())
	}
}

func TestCRSValidate(t *testing.T) {
	good := FromDense(2, 2, []float64{1, 0, 0, 2})
	require.NoError(t, good.Validate())
	assert.Equal(t, 2, good.NNZ())

	bad := good
	bad.ColIdx = []int32{0, 5}
	assert.ErrorIs(t, bad.Validate(), par.ErrValidation)

	bad = good
	bad.RowPtr = []int32{0, 2, 1}
	assert.ErrorIs(t, bad.Validate(), par.ErrValidation)

	bad = good
	bad.RowPtr = []int32{0, 2}
	assert.ErrorIs(t, bad.Validate(), par.ErrValidation)
}

func TestDenseTask(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := randomDense(rng, 6, 5, 1)
	b := randomDense(rng, 5, 4, 1)
	want := tripleLoop(a, b, 6, 4, 5)

	for _, d := range drivers(t) {
		data := DenseData(a, 6, 5, b, 5, 4)
		dt := NewDenseTask(data, d)
		require.NoError(t, task.Pipeline(dt), d.Name())
		got, err := task.Decode[float64](&data.Outputs[0])
		require.NoError(t, err)
		assert.True(t, floats.EqualApprox(want, got, tol), d.Name())

		// Run again on the same state.
		require.True(t, dt.Run())
		assert.True(t, floats.EqualApprox(want, dt.Result(), tol))
	}
}

func TestValidationRejectsInnerMismatch(t *testing.T) {
	dt := NewDenseTask(DenseData(make([]float64, 6), 2, 3, make([]float64, 8), 4, 2), nil)
	assert.False(t, dt.Validation())
	assert.ErrorIs(t, dt.Err(), par.ErrValidation)

	st := NewSparseTask(SparseData(FromDense(2, 3, make([]float64, 6)), FromDense(4, 2, make([]float64, 8))), nil)
	assert.False(t, st.Validation())
}

func TestDensePreProcessingRejectsBadShape(t *testing.T) {
	tests := []struct {
		name  string
		shape []int32
		a, b  int
	}{
		{"negative rows", []int32{-1, 3, 3, 2}, 0, 6},
		{"negative cols", []int32{2, 3, 3, -4}, 6, 0},
		{"short", []int32{2, 3}, 6, 6},
		{"a size", []int32{2, 3, 3, 2}, 5, 6},
		{"b size", []int32{2, 3, 3, 2}, 6, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := &task.Data{
				Inputs: []task.Buffer{
					task.NewBuffer("a", make([]float64, tc.a)),
					task.NewBuffer("b", make([]float64, tc.b)),
					task.NewBuffer("shape", tc.shape),
				},
				Outputs: []task.Buffer{task.Alloc("c", task.KindFloat64, 0)},
			}
			dt := NewDenseTask(data, nil)
			assert.NotPanics(t, func() {
				assert.False(t, dt.PreProcessing())
			})
			assert.ErrorIs(t, dt.Err(), par.ErrValidation)
			assert.False(t, dt.Validation())

			err := task.Pipeline(NewDenseTask(data, nil))
			assert.ErrorIs(t, err, task.ErrPhase)
		})
	}
}

func TestValidationRejectsMalformedCRS(t *testing.T) {
	a := FromDense(2, 2, []float64{1, 0, 0, 1})
	a.ColIdx[1] = 9
	st := NewSparseTask(SparseData(a, FromDense(2, 2, []float64{1, 0, 0, 1})), nil)
	assert.False(t, st.Validation())
}
