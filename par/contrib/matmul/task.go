// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package matmul

import (
	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

// DenseTask multiplies the row-major float64 inputs "a" and "b" into "c".
// The int32 input "shape" holds {aRows, aCols, bRows, bCols}.
type DenseTask struct {
	task.Base
	m, n, k int
	a, b, c []float64
}

var denseSchema = task.Schema{
	Inputs: []task.Field{
		{Name: "a", Kind: task.KindFloat64},
		{Name: "b", Kind: task.KindFloat64},
		{Name: "shape", Kind: task.KindInt32, MinCount: 4},
	},
	Outputs: []task.Field{{Name: "c", Kind: task.KindFloat64}},
}

// DenseData builds the task data for A (m x k) times B (k2 x n).
func DenseData(a []float64, m, k int, b []float64, k2, n int) *task.Data {
	return &task.Data{
		Inputs: []task.Buffer{
			task.NewBuffer("a", a),
			task.NewBuffer("b", b),
			task.NewBuffer("shape", []int32{int32(m), int32(k), int32(k2), int32(n)}),
		},
		Outputs: []task.Buffer{task.Alloc("c", task.KindFloat64, m*n)},
	}
}

// NewDenseTask returns a dense matmul task over data, run on d.
func NewDenseTask(data *task.Data, d par.Driver) *DenseTask {
	return &DenseTask{Base: task.NewBase("matmul-dense", data, d)}
}

// readShape returns {aRows, aCols, bRows, bCols}, rejecting short or
// negative shapes.
func readShape(data *task.Data) ([4]int, error) {
	var shape [4]int
	b, err := data.In("shape")
	if err != nil {
		return shape, err
	}
	raw, err := task.Decode[int32](b)
	if err != nil {
		return shape, err
	}
	if len(raw) < 4 {
		return shape, par.Invalid("shape holds %d values, want 4", len(raw))
	}
	for i := range shape {
		if raw[i] < 0 {
			return shape, par.Invalid("negative shape %v", raw[:4])
		}
		shape[i] = int(raw[i])
	}
	return shape, nil
}

// PreProcessing decodes the operands.
func (t *DenseTask) PreProcessing() bool {
	shape, err := readShape(t.Data())
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	t.m, t.k, t.n = shape[0], shape[1], shape[3]
	a, err := t.Data().In("a")
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	b, err := t.Data().In("b")
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	if t.a, err = task.Decode[float64](a); err != nil {
		return t.Fail("PreProcessing", err)
	}
	if t.b, err = task.Decode[float64](b); err != nil {
		return t.Fail("PreProcessing", err)
	}
	switch {
	case len(t.a) != t.m*t.k:
		return t.Fail("PreProcessing", par.Invalid("a holds %d values, want %d", len(t.a), t.m*t.k))
	case len(t.b) != shape[2]*t.n:
		return t.Fail("PreProcessing", par.Invalid("b holds %d values, want %d", len(t.b), shape[2]*t.n))
	}
	t.c = make([]float64, t.m*t.n)
	return true
}

// Validation rejects mismatched inner dimensions and buffers whose sizes
// disagree with the shape.
func (t *DenseTask) Validation() bool {
	if err := denseSchema.Check(t.Data()); err != nil {
		return t.Fail("Validation", err)
	}
	shape, err := readShape(t.Data())
	if err != nil {
		return t.Fail("Validation", err)
	}
	aRows, aCols, bRows, bCols := shape[0], shape[1], shape[2], shape[3]
	if aCols != bRows {
		return t.Fail("Validation", par.Invalid("inner dimensions differ: %dx%d * %dx%d", aRows, aCols, bRows, bCols))
	}
	a, _ := t.Data().In("a")
	b, _ := t.Data().In("b")
	c, _ := t.Data().Out("c")
	switch {
	case a.Count != aRows*aCols:
		return t.Fail("Validation", par.Invalid("a holds %d values, want %d", a.Count, aRows*aCols))
	case b.Count != bRows*bCols:
		return t.Fail("Validation", par.Invalid("b holds %d values, want %d", b.Count, bRows*bCols))
	case c.Count != aRows*bCols:
		return t.Fail("Validation", par.Invalid("c holds %d values, want %d", c.Count, aRows*bCols))
	}
	return true
}

// Run computes the product.
func (t *DenseTask) Run() bool {
	return t.Check("Run", Mul(t.Context(), t.Driver(), t.a, t.b, t.c, t.m, t.n, t.k))
}

// PostProcessing writes the product to "c".
func (t *DenseTask) PostProcessing() bool {
	c, err := t.Data().Out("c")
	if err != nil {
		return t.Fail("PostProcessing", err)
	}
	return t.Check("PostProcessing", task.Encode(c, t.c))
}

// Result returns the product of the last Run.
func (t *DenseTask) Result() []float64 {
	return t.c
}

// EncodeCRS returns the buffers holding m under the given name prefix.
func EncodeCRS(prefix string, m CRS) []task.Buffer {
	return []task.Buffer{
		task.NewBuffer(prefix+".values", m.Values),
		task.NewBuffer(prefix+".cols", m.ColIdx),
		task.NewBuffer(prefix+".rowptr", m.RowPtr),
		task.NewBuffer(prefix+".shape", []int32{int32(m.Rows), int32(m.Cols)}),
	}
}

// DecodeCRS reads the matrix stored under prefix by EncodeCRS.
func DecodeCRS(lookup func(string) (*task.Buffer, error), prefix string) (CRS, error) {
	var m CRS
	bufs := make([]*task.Buffer, 4)
	for i, suffix := range []string{".values", ".cols", ".rowptr", ".shape"} {
		b, err := lookup(prefix + suffix)
		if err != nil {
			return m, err
		}
		bufs[i] = b
	}
	var err error
	if m.Values, err = task.Decode[float64](bufs[0]); err != nil {
		return m, err
	}
	if m.ColIdx, err = task.Decode[int32](bufs[1]); err != nil {
		return m, err
	}
	if m.RowPtr, err = task.Decode[int32](bufs[2]); err != nil {
		return m, err
	}
	shape, err := task.Decode[int32](bufs[3])
	if err != nil {
		return m, err
	}
	if len(shape) != 2 {
		return m, par.Invalid("%s.shape holds %d values, want 2", prefix, len(shape))
	}
	m.Rows, m.Cols = int(shape[0]), int(shape[1])
	return m, m.Validate()
}

// SparseTask multiplies the CRS matrices stored under "a" and "b" and
// writes the CRS product under "c".
type SparseTask struct {
	task.Base
	a, b, c CRS
}

// SparseData builds the task data for a times b.
func SparseData(a, b CRS) *task.Data {
	return &task.Data{Inputs: append(EncodeCRS("a", a), EncodeCRS("b", b)...)}
}

// NewSparseTask returns a sparse matmul task over data, run on d.
func NewSparseTask(data *task.Data, d par.Driver) *SparseTask {
	return &SparseTask{Base: task.NewBase("matmul-sparse", data, d)}
}

// PreProcessing decodes both operands.
func (t *SparseTask) PreProcessing() bool {
	var err error
	if t.a, err = DecodeCRS(t.Data().In, "a"); err != nil {
		return t.Fail("PreProcessing", err)
	}
	if t.b, err = DecodeCRS(t.Data().In, "b"); err != nil {
		return t.Fail("PreProcessing", err)
	}
	return true
}

// Validation rejects malformed CRS operands and mismatched inner
// dimensions.
func (t *SparseTask) Validation() bool {
	a, err := DecodeCRS(t.Data().In, "a")
	if err != nil {
		return t.Fail("Validation", err)
	}
	b, err := DecodeCRS(t.Data().In, "b")
	if err != nil {
		return t.Fail("Validation", err)
	}
	if a.Cols != b.Rows {
		return t.Fail("Validation", par.Invalid("inner dimensions differ: %dx%d * %dx%d", a.Rows, a.Cols, b.Rows, b.Cols))
	}
	return true
}

// Run computes the product.
func (t *SparseTask) Run() bool {
	c, err := MulSparse(t.Context(), t.Driver(), t.a, t.b)
	if err != nil {
		return t.Fail("Run", err)
	}
	t.c = c
	return true
}

// PostProcessing stores the product under "c".
func (t *SparseTask) PostProcessing() bool {
	for _, b := range EncodeCRS("c", t.c) {
		t.Data().SetOut(b)
	}
	return true
}

// Result returns the product of the last Run.
func (t *SparseTask) Result() CRS {
	return t.c
}
