// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package image

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

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

func randomImage(rng *rand.Rand, width, height int) *Image {
	img := NewImage(width, height)
	for i := range img.pix {
		img.pix[i] = float64(rng.Intn(256))
	}
	return img
}

func TestIdentitySeedScenario(t *testing.T) {
	pix := make([]float64, 16)
	for i := range pix {
		pix[i] = float64(i*17%23) + 0.5
	}
	img := FromPixels(4, 4, pix)

	for _, d := range drivers(t) {
		t.Run(d.Name(), func(t *testing.T) {
			data := ConvolveData(img, Identity())
			require.NoError(t, task.Pipeline(NewConvolveTask(data, d)))
			got, err := task.Decode[float64](&data.Outputs[0])
			require.NoError(t, err)
			assert.Equal(t, pix, got)
		})
	}
}

func TestConvolveBackendEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	src := randomImage(rng, 37, 29)

	want := NewImage(37, 29)
	require.NoError(t, Convolve(context.Background(), par.NewSequential(), src, want, Gaussian()))

	for _, d := range drivers(t)[1:] {
		for _, k := range []Kernel3x3{Gaussian(), Mean(), SobelX()} {
			got := NewImage(37, 29)
			require.NoError(t, Convolve(context.Background(), d, src, got, k))
			ref := NewImage(37, 29)
			require.NoError(t, Convolve(context.Background(), par.NewSequential(), src, ref, k))
			if diff := cmp.Diff(ref.Pix(), got.Pix(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("%s differs from sequential (-want +got):\n%s", d.Name(), diff)
			}
		}
	}
	assert.NotEqual(t, src.Pix(), want.Pix(), "blur changes a random image")
}

func TestConvolveMirroredEdges(t *testing.T) {
	// Constant images are fixed points of any normalized kernel.
	img := NewImage(5, 4)
	for i := range img.pix {
		img.pix[i] = 3
	}
	out := NewImage(5, 4)
	require.NoError(t, Convolve(context.Background(), par.NewSequential(), img, out, Mean()))
	for _, v := range out.Pix() {
		assert.InDelta(t, 3, v, 1e-12)
	}

	// A horizontal ramp has zero vertical gradient and mirrored borders
	// flatten the horizontal one at the edges.
	ramp := NewImage(4, 3)
	for y := range 3 {
		for x := range 4 {
			ramp.Set(x, y, float64(x))
		}
	}
	grad := NewImage(4, 3)
	require.NoError(t, Convolve(context.Background(), par.NewSequential(), ramp, grad, SobelX()))
	assert.Equal(t, []float64{4, 8, 8, 4}, grad.Row(1))
}

func TestConvolveDegenerate(t *testing.T) {
	img := FromPixels(2, 5, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	out := NewImage(2, 5)
	shared := par.NewShared(2)
	defer shared.Close()
	require.NoError(t, Convolve(context.Background(), shared, img, out, Gaussian()))
	assert.Equal(t, img.Pix(), out.Pix())

	assert.ErrorIs(t, Convolve(context.Background(), par.NewSequential(), img, NewImage(5, 2), Identity()), par.ErrValidation)
}

func TestConvolveValidation(t *testing.T) {
	img := NewImage(4, 4)
	data := ConvolveData(img, Identity())
	data.Outputs[0] = task.Alloc("out", task.KindFloat64, 15)
	ct := NewConvolveTask(data, nil)
	assert.False(t, ct.Validation())
	assert.ErrorIs(t, ct.Err(), par.ErrValidation)

	data = ConvolveData(img, Identity())
	data.Inputs[2] = task.NewBuffer("kernel", []float64{1, 2, 3})
	assert.False(t, NewConvolveTask(data, nil).Validation())

	assert.True(t, NewConvolveTask(ConvolveData(img, Mean()), nil).Validation())
}

func TestConvolveRunIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	shared := par.NewShared(3)
	defer shared.Close()

	ct := NewConvolveTask(ConvolveData(randomImage(rng, 16, 16), Gaussian()), shared)
	require.True(t, ct.PreProcessing())
	require.True(t, ct.Validation())
	require.True(t, ct.Run())
	first := ct.Result().Clone()
	for range 3 {
		require.True(t, ct.Run())
		assert.Equal(t, first.Pix(), ct.Result().Pix())
	}
}
