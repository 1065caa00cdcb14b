// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package image

import (
	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

// ConvolveTask convolves the float64 input "image", whose int32 input
// "shape" holds {width, height}, with the 9 taps of the float64 input
// "kernel", into the output "out".
type ConvolveTask struct {
	task.Base
	src, dst *Image
	kernel   Kernel3x3
}

var convolveSchema = task.Schema{
	Inputs: []task.Field{
		{Name: "image", Kind: task.KindFloat64},
		{Name: "shape", Kind: task.KindInt32, MinCount: 2},
		{Name: "kernel", Kind: task.KindFloat64},
	},
	Outputs: []task.Field{{Name: "out", Kind: task.KindFloat64}},
}

// ConvolveData builds the task data for convolving img with k.
func ConvolveData(img *Image, k Kernel3x3) *task.Data {
	return &task.Data{
		Inputs: []task.Buffer{
			task.NewBuffer("image", img.pix),
			task.NewBuffer("shape", []int32{int32(img.width), int32(img.height)}),
			task.NewBuffer("kernel", k[:]),
		},
		Outputs: []task.Buffer{task.Alloc("out", task.KindFloat64, len(img.pix))},
	}
}

// NewConvolveTask returns a convolution task over data, run on d.
func NewConvolveTask(data *task.Data, d par.Driver) *ConvolveTask {
	return &ConvolveTask{Base: task.NewBase("convolve", data, d)}
}

func decodeShape(data *task.Data) (width, height int, err error) {
	b, err := data.In("shape")
	if err != nil {
		return 0, 0, err
	}
	shape, err := task.Decode[int32](b)
	if err != nil {
		return 0, 0, err
	}
	if len(shape) != 2 {
		return 0, 0, par.Invalid("shape holds %d values, want 2", len(shape))
	}
	return int(shape[0]), int(shape[1]), nil
}

// PreProcessing decodes the image and the kernel.
func (t *ConvolveTask) PreProcessing() bool {
	width, height, err := decodeShape(t.Data())
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	in, _ := t.Data().In("image")
	pix, err := task.Decode[float64](in)
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	kb, _ := t.Data().In("kernel")
	taps, err := task.Decode[float64](kb)
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	copy(t.kernel[:], taps)
	t.src = FromPixels(width, height, pix)
	t.dst = FromPixels(width, height, make([]float64, len(pix)))
	return true
}

// Validation checks that the output has the input's size and that the
// kernel has 9 taps.
func (t *ConvolveTask) Validation() bool {
	if err := convolveSchema.Check(t.Data()); err != nil {
		return t.Fail("Validation", err)
	}
	width, height, err := decodeShape(t.Data())
	if err != nil {
		return t.Fail("Validation", err)
	}
	if width < 0 || height < 0 {
		return t.Fail("Validation", par.Invalid("negative image shape %dx%d", width, height))
	}
	in, _ := t.Data().In("image")
	out, _ := t.Data().Out("out")
	kernel, _ := t.Data().In("kernel")
	switch {
	case in.Count != width*height:
		return t.Fail("Validation", par.Invalid("image holds %d pixels, want %dx%d", in.Count, width, height))
	case out.Count != in.Count:
		return t.Fail("Validation", par.Invalid("output holds %d pixels, input %d", out.Count, in.Count))
	case kernel.Count != 9:
		return t.Fail("Validation", par.Invalid("kernel has %d taps, want 9", kernel.Count))
	}
	return true
}

// Run convolves the image.
func (t *ConvolveTask) Run() bool {
	return t.Check("Run", Convolve(t.Context(), t.Driver(), t.src, t.dst, t.kernel))
}

// PostProcessing writes the result to "out".
func (t *ConvolveTask) PostProcessing() bool {
	out, err := t.Data().Out("out")
	if err != nil {
		return t.Fail("PostProcessing", err)
	}
	return t.Check("PostProcessing", task.Encode(out, t.dst.pix))
}

// Result returns the image produced by the last Run.
func (t *ConvolveTask) Result() *Image {
	return t.dst
}
