// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package sort

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

func newData(in []int32, outCount int) *task.Data {
	return &task.Data{
		Inputs:  []task.Buffer{task.NewBuffer("in", in)},
		Outputs: []task.Buffer{task.Alloc("out", task.KindInt32, outCount)},
	}
}

func output(t *testing.T, data *task.Data) []int32 {
	t.Helper()
	out, err := task.Decode[int32](&data.Outputs[0])
	require.NoError(t, err)
	return out
}

func TestSeedScenario(t *testing.T) {
	in := []int32{5, 1, 8, 6, 2, 7, 1, 4}
	want := []int32{1, 1, 2, 4, 5, 6, 7, 8}

	shared := par.NewShared(2)
	defer shared.Close()
	for _, d := range []par.Driver{par.NewSequential(), shared} {
		data := newData(in, len(in))
		require.NoError(t, task.Pipeline(NewTask(data, d, Options{})), d.Name())
		assert.Equal(t, want, output(t, data), d.Name())
	}
}

func TestValidationRejectsCountMismatch(t *testing.T) {
	data := newData([]int32{3, 2, 1}, 2)
	st := NewTask(data, nil, Options{})
	assert.False(t, st.Validation())
	assert.ErrorIs(t, st.Err(), par.ErrValidation)
}

func TestValidationBeforePreProcessing(t *testing.T) {
	st := NewTask(newData([]int32{3, 2, 1}, 3), nil, Options{})
	assert.True(t, st.Validation())
}

func TestShellPow2RequiresPowerOfTwo(t *testing.T) {
	st := NewTask(newData(make([]int32, 12), 12), nil, Options{Strategy: ShellPow2})
	assert.False(t, st.Validation())

	st = NewTask(newData(make([]int32, 16), 16), nil, Options{Strategy: ShellPow2})
	assert.True(t, st.Validation())
}

func TestBackendEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	in := randomInt32s(rng, 3001)
	want := slices.Clone(in)
	slices.Sort(want)

	shared := par.NewShared(4)
	dist := par.NewDistributed(3, 2)
	defer shared.Close()
	defer dist.Close()

	for _, d := range []par.Driver{par.NewSequential(), shared, dist} {
		for _, s := range []Strategy{Quick, Shell, Radix} {
			for _, m := range []Merge{MergeTree, MergeOddEven} {
				t.Run(fmt.Sprintf("%s/%s/%d", d.Name(), s, m), func(t *testing.T) {
					data := newData(in, len(in))
					require.NoError(t, task.Pipeline(NewTask(data, d, Options{Strategy: s, Merge: m})))
					assert.Equal(t, want, output(t, data))
				})
			}
		}
	}
}

func TestShellPow2Run(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	in := randomInt32s(rng, 1024)
	want := slices.Clone(in)
	slices.Sort(want)

	shared := par.NewShared(6)
	defer shared.Close()
	st := NewTask(newData(in, len(in)), shared, Options{Strategy: ShellPow2, Merge: MergeOddEven})
	assert.Len(t, st.ranges(len(in)), 4)
	require.NoError(t, task.Pipeline(st))
	assert.Equal(t, want, st.Sorted())
}

func TestRunIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	in := randomInt32s(rng, 777)

	shared := par.NewShared(3)
	defer shared.Close()
	st := NewTask(newData(in, len(in)), shared, Options{Strategy: Quick})
	res, err := task.Perf{Runs: 4}.TaskRun(st)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Runs)

	first := slices.Clone(st.Sorted())
	require.True(t, st.Run())
	assert.Equal(t, first, st.Sorted())
	assert.True(t, slices.IsSorted(first))
}

func TestEmptyInput(t *testing.T) {
	data := newData(nil, 0)
	require.NoError(t, task.Pipeline(NewTask(data, nil, Options{})))
	assert.Empty(t, output(t, data))
}
