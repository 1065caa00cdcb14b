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

package sort

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/ajroetker/go-par/par/contrib/forkjoin"
)

func randomInt32s(rng *rand.Rand, n int) []int32 {
	data := make([]int32, n)
	for i := range data {
		data[i] = rng.Int31() - math.MaxInt32/2
	}
	return data
}

func TestKernels(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := forkjoin.New(4)
	sorts := map[string]func([]int32){
		"quick":  func(d []int32) { QuickSort(pool, d) },
		"serial": func(d []int32) { QuickSort(nil, d) },
		"shell":  ShellSort[int32],
		"radix":  func(d []int32) { RadixSort(d, make([]int32, len(d))) },
	}
	inputs := map[string][]int32{
		"empty":    {},
		"single":   {42},
		"sorted":   {1, 2, 3, 4, 5, 6, 7, 8},
		"reversed": {8, 7, 6, 5, 4, 3, 2, 1},
		"equal":    slices.Repeat([]int32{7}, 100),
		"extremes": {math.MaxInt32, math.MinInt32, 0, -1, 1, math.MinInt32},
		"random":   randomInt32s(rng, 10000),
	}
	for name, sortFn := range sorts {
		for inName, in := range inputs {
			data := slices.Clone(in)
			want := slices.Clone(in)
			slices.Sort(want)
			sortFn(data)
			if !slices.Equal(data, want) {
				t.Errorf("%s(%s) not sorted", name, inName)
			}
		}
	}
}

func TestHeapsortFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	data := randomInt32s(rng, 500)
	want := slices.Clone(data)
	slices.Sort(want)
	// A depth limit of 1 forces the heapsort path below the first split.
	quick(forkjoin.New(1), data, 1)
	if !slices.Equal(data, want) {
		t.Errorf("quick with exhausted depth limit did not sort")
	}
}

func TestPartition3Way(t *testing.T) {
	data := []int32{5, 1, 8, 5, 2, 7, 5, 4}
	lt, gt := partition3Way(data, 5)
	for i, v := range data {
		switch {
		case i < lt && v >= 5, i >= gt && v <= 5, i >= lt && i < gt && v != 5:
			t.Fatalf("bad partition %v (lt=%d gt=%d)", data, lt, gt)
		}
	}
	if gt-lt != 3 {
		t.Errorf("middle section has %d elements, want 3", gt-lt)
	}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{Quick, Shell, ShellPow2, Radix} {
		got, err := ParseStrategy(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStrategy(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseStrategy("bogo"); err == nil {
		t.Error("ParseStrategy accepted an unknown name")
	}
}

func TestParseMerge(t *testing.T) {
	for _, m := range []Merge{MergeTree, MergeOddEven} {
		got, err := ParseMerge(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMerge(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMerge("bitonic"); err == nil {
		t.Error("ParseMerge accepted an unknown name")
	}
}
