// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package integrate

import (
	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

// SimpsonTask integrates a Func over the float64 input "bounds" {a, b}
// with the int32 input "n" subintervals, into the float64 output "result".
type SimpsonTask struct {
	task.Base
	f      Func
	a, b   float64
	n      int
	result float64
}

var simpsonSchema = task.Schema{
	Inputs: []task.Field{
		{Name: "bounds", Kind: task.KindFloat64, MinCount: 2},
		{Name: "n", Kind: task.KindInt32, MinCount: 1},
	},
	Outputs: []task.Field{{Name: "result", Kind: task.KindFloat64, MinCount: 1}},
}

// SimpsonData builds the task data for integrating over [a, b] on n
// subintervals.
func SimpsonData(a, b float64, n int) *task.Data {
	return &task.Data{
		Inputs: []task.Buffer{
			task.NewBuffer("bounds", []float64{a, b}),
			task.NewBuffer("n", []int32{int32(n)}),
		},
		Outputs: []task.Buffer{task.Alloc("result", task.KindFloat64, 1)},
	}
}

// NewSimpsonTask returns a task integrating f over data, run on d.
func NewSimpsonTask(f Func, data *task.Data, d par.Driver) *SimpsonTask {
	return &SimpsonTask{Base: task.NewBase("simpson", data, d), f: f}
}

func (t *SimpsonTask) decode() (a, b float64, n int, err error) {
	bb, err := t.Data().In("bounds")
	if err != nil {
		return 0, 0, 0, err
	}
	bounds, err := task.Decode[float64](bb)
	if err != nil {
		return 0, 0, 0, err
	}
	nb, err := t.Data().In("n")
	if err != nil {
		return 0, 0, 0, err
	}
	ns, err := task.Decode[int32](nb)
	if err != nil {
		return 0, 0, 0, err
	}
	if len(bounds) < 2 || len(ns) < 1 {
		return 0, 0, 0, par.Invalid("bounds and n are required")
	}
	return bounds[0], bounds[1], int(ns[0]), nil
}

// PreProcessing decodes the bounds and the subinterval count.
func (t *SimpsonTask) PreProcessing() bool {
	var err error
	t.a, t.b, t.n, err = t.decode()
	return t.Check("PreProcessing", err)
}

// Validation requires an integrand and an even, positive subinterval
// count.
func (t *SimpsonTask) Validation() bool {
	if err := simpsonSchema.Check(t.Data()); err != nil {
		return t.Fail("Validation", err)
	}
	if t.f == nil {
		return t.Fail("Validation", par.Invalid("no integrand"))
	}
	_, _, n, err := t.decode()
	if err != nil {
		return t.Fail("Validation", err)
	}
	if n <= 0 || n%2 != 0 {
		return t.Fail("Validation", par.Invalid("n must be even and positive, got %d", n))
	}
	return true
}

// Run integrates.
func (t *SimpsonTask) Run() bool {
	r, err := Simpson(t.Context(), t.Driver(), t.f, t.a, t.b, t.n)
	if err != nil {
		return t.Fail("Run", err)
	}
	t.result = r
	return true
}

// PostProcessing writes the integral to "result".
func (t *SimpsonTask) PostProcessing() bool {
	out, err := t.Data().Out("result")
	if err != nil {
		return t.Fail("PostProcessing", err)
	}
	return t.Check("PostProcessing", task.Encode(out, []float64{t.result}))
}

// Result returns the integral computed by the last Run.
func (t *SimpsonTask) Result() float64 {
	return t.result
}

// MidpointTask integrates a Func2 over the float64 input "box"
// {x0, x1, y0, y1} on the int32 input "grid" {nx, ny}, into the float64
// output "result".
type MidpointTask struct {
	task.Base
	f      Func2
	box    Box
	nx, ny int
	result float64
}

var midpointSchema = task.Schema{
	Inputs: []task.Field{
		{Name: "box", Kind: task.KindFloat64, MinCount: 4},
		{Name: "grid", Kind: task.KindInt32, MinCount: 2},
	},
	Outputs: []task.Field{{Name: "result", Kind: task.KindFloat64, MinCount: 1}},
}

// MidpointData builds the task data for integrating over box on an nx by
// ny grid.
func MidpointData(box Box, nx, ny int) *task.Data {
	return &task.Data{
		Inputs: []task.Buffer{
			task.NewBuffer("box", []float64{box.X0, box.X1, box.Y0, box.Y1}),
			task.NewBuffer("grid", []int32{int32(nx), int32(ny)}),
		},
		Outputs: []task.Buffer{task.Alloc("result", task.KindFloat64, 1)},
	}
}

// NewMidpointTask returns a task integrating f over data, run on d.
func NewMidpointTask(f Func2, data *task.Data, d par.Driver) *MidpointTask {
	return &MidpointTask{Base: task.NewBase("midpoint", data, d), f: f}
}

func (t *MidpointTask) decode() (Box, int, int, error) {
	bb, err := t.Data().In("box")
	if err != nil {
		return Box{}, 0, 0, err
	}
	box, err := task.Decode[float64](bb)
	if err != nil {
		return Box{}, 0, 0, err
	}
	gb, err := t.Data().In("grid")
	if err != nil {
		return Box{}, 0, 0, err
	}
	grid, err := task.Decode[int32](gb)
	if err != nil {
		return Box{}, 0, 0, err
	}
	if len(box) < 4 || len(grid) < 2 {
		return Box{}, 0, 0, par.Invalid("box and grid are required")
	}
	return Box{X0: box[0], X1: box[1], Y0: box[2], Y1: box[3]}, int(grid[0]), int(grid[1]), nil
}

// PreProcessing decodes the box and the grid.
func (t *MidpointTask) PreProcessing() bool {
	var err error
	t.box, t.nx, t.ny, err = t.decode()
	return t.Check("PreProcessing", err)
}

// Validation requires an integrand and a positive grid.
func (t *MidpointTask) Validation() bool {
	if err := midpointSchema.Check(t.Data()); err != nil {
		return t.Fail("Validation", err)
	}
	if t.f == nil {
		return t.Fail("Validation", par.Invalid("no integrand"))
	}
	_, nx, ny, err := t.decode()
	if err != nil {
		return t.Fail("Validation", err)
	}
	if nx <= 0 || ny <= 0 {
		return t.Fail("Validation", par.Invalid("grid must be positive, got %dx%d", nx, ny))
	}
	return true
}

// Run integrates.
func (t *MidpointTask) Run() bool {
	r, err := Midpoint(t.Context(), t.Driver(), t.f, t.box, t.nx, t.ny)
	if err != nil {
		return t.Fail("Run", err)
	}
	t.result = r
	return true
}

// PostProcessing writes the integral to "result".
func (t *MidpointTask) PostProcessing() bool {
	out, err := t.Data().Out("result")
	if err != nil {
		return t.Fail("PostProcessing", err)
	}
	return t.Check("PostProcessing", task.Encode(out, []float64{t.result}))
}

// Result returns the integral computed by the last Run.
func (t *MidpointTask) Result() float64 {
	return t.result
}
