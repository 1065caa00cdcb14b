// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-par/par"
)

func TestBufferRoundTrip(t *testing.T) {
	b := NewBuffer("in", []int32{5, -1, 8})
	assert.Equal(t, KindInt32, b.Kind)
	assert.Equal(t, 3, b.Count)
	assert.Equal(t, []byte{5, 0, 0, 0, 0xff, 0xff, 0xff, 0xff, 8, 0, 0, 0}, b.Data, "little-endian")

	got, err := Decode[int32](&b)
	require.NoError(t, err)
	assert.Equal(t, []int32{5, -1, 8}, got)

	pts := NewBuffer("pts", []Point2D{{1, 2}, {-3, 0.5}})
	assert.Len(t, pts.Data, 32)
	back, err := Decode[Point2D](&pts)
	require.NoError(t, err)
	assert.Equal(t, []Point2D{{1, 2}, {-3, 0.5}}, back)
}

func TestDecodeChecksKindAndSize(t *testing.T) {
	b := NewBuffer("in", []float64{1, 2})
	_, err := Decode[int32](&b)
	assert.ErrorIs(t, err, par.ErrValidation)

	b.Count = 3
	_, err = Decode[float64](&b)
	assert.ErrorIs(t, err, par.ErrValidation)
}

func TestEncode(t *testing.T) {
	out := Alloc("out", KindFloat32, 2)
	require.NoError(t, Encode(&out, []float32{1.5, -2}))
	got, err := Decode[float32](&out)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2}, got)

	assert.ErrorIs(t, Encode(&out, []float32{1}), par.ErrValidation)
	assert.ErrorIs(t, Encode(&out, []float64{1, 2}), par.ErrValidation)

	empty := Alloc("out", KindUint8, 0)
	assert.NoError(t, Encode(&empty, []uint8{}))
}

func TestKind(t *testing.T) {
	assert.Equal(t, 16, KindPoint2D.Size())
	assert.Equal(t, 1, KindRaw.Size())
	assert.Equal(t, "float64", KindFloat64.String())
	assert.Equal(t, KindUint8, KindOf[uint8]())
	assert.Equal(t, KindInt64, KindOf[int64]())
}

func TestSchemaCheck(t *testing.T) {
	s := Schema{
		Inputs:  []Field{{Name: "in", Kind: KindInt32, MinCount: 1}},
		Outputs: []Field{{Name: "out", Kind: KindInt32}},
	}
	data := &Data{
		Inputs:  []Buffer{NewBuffer("in", []int32{1, 2})},
		Outputs: []Buffer{Alloc("out", KindInt32, 2)},
	}
	require.NoError(t, s.Check(data))

	assert.ErrorIs(t, s.Check(nil), par.ErrValidation)
	assert.ErrorIs(t, s.Check(&Data{Inputs: data.Inputs}), par.ErrValidation)
	assert.ErrorIs(t, s.Check(&Data{
		Inputs:  []Buffer{NewBuffer[int32]("in", nil)},
		Outputs: data.Outputs,
	}), par.ErrValidation)

	in, err := data.In("in")
	require.NoError(t, err)
	assert.Equal(t, 2, in.Count)
	_, err = data.Out("nope")
	assert.ErrorIs(t, err, par.ErrValidation)
}

// counter is a minimal task: it copies its input and counts Run calls.
type counter struct {
	Base
	in, out  []int32
	runs     int
	failRun  bool
	validate bool
}

func newCounter(data *Data) *counter {
	return &counter{Base: NewBase("counter", data, nil), validate: true}
}

func (c *counter) PreProcessing() bool {
	b, err := c.Data().In("in")
	if err != nil {
		return c.Fail("PreProcessing", err)
	}
	c.in, err = Decode[int32](b)
	return c.Check("PreProcessing", err)
}

func (c *counter) Validation() bool {
	if !c.validate {
		return c.Fail("Validation", par.Invalid("rejected"))
	}
	return true
}

func (c *counter) Run() bool {
	c.runs++
	if c.failRun {
		return c.Fail("Run", par.Failure("boom"))
	}
	c.out = append(c.out[:0], c.in...)
	return true
}

func (c *counter) PostProcessing() bool {
	b, err := c.Data().Out("out")
	if err != nil {
		return c.Fail("PostProcessing", err)
	}
	return c.Check("PostProcessing", Encode(b, c.out))
}

func counterData() *Data {
	return &Data{
		Inputs:  []Buffer{NewBuffer("in", []int32{3, 1, 2})},
		Outputs: []Buffer{Alloc("out", KindInt32, 3)},
	}
}

func TestPipeline(t *testing.T) {
	data := counterData()
	c := newCounter(data)
	require.NoError(t, Pipeline(c))
	got, err := Decode[int32](&data.Outputs[0])
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1, 2}, got)
	assert.Equal(t, "sequential", c.Driver().Name())

	c = newCounter(counterData())
	c.validate = false
	err = Pipeline(c)
	assert.ErrorIs(t, err, ErrPhase)
	assert.ErrorIs(t, err, par.ErrValidation)
	assert.ErrorContains(t, err, "Validation")
	assert.Zero(t, c.runs, "Run is never reached")

	c = newCounter(counterData())
	c.failRun = true
	err = Pipeline(c)
	assert.ErrorIs(t, err, par.ErrRunFailure)
	assert.ErrorIs(t, c.Err(), par.ErrRunFailure)
}

func TestPerfTaskRun(t *testing.T) {
	var ticks time.Duration
	timer := func() time.Duration {
		ticks += time.Millisecond
		return ticks
	}
	c := newCounter(counterData())
	res, err := Perf{Runs: 5, Timer: timer}.TaskRun(c)
	require.NoError(t, err)
	assert.Equal(t, 5, c.runs)
	assert.Equal(t, 5, res.Runs)
	assert.Equal(t, TaskRunType, res.Type)
	assert.Equal(t, time.Millisecond, res.TotalTime)
	assert.Equal(t, time.Millisecond/5, res.AverageTime)
}

func TestPerfPipelineRun(t *testing.T) {
	c := newCounter(counterData())
	res, err := Perf{}.PipelineRun(c)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Runs)
	assert.Equal(t, 1, c.runs)
	assert.Equal(t, "pipeline", res.Type.String())

	c = newCounter(counterData())
	c.failRun = true
	_, err = Perf{Runs: 3}.PipelineRun(c)
	assert.ErrorIs(t, err, ErrPhase)
	assert.Equal(t, 1, c.runs)
}

func TestSetOut(t *testing.T) {
	data := &Data{Outputs: []Buffer{Alloc("out", KindInt32, 1)}}
	data.SetOut(NewBuffer("out", []int32{1, 2, 3}))
	data.SetOut(NewBuffer("extra", []float64{1}))
	require.Len(t, data.Outputs, 2)
	out, err := data.Out("out")
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
}
