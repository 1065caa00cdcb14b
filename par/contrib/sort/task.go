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
	"context"
	"fmt"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/contrib/forkjoin"
	"github.com/ajroetker/go-par/par/contrib/merge"
	"github.com/ajroetker/go-par/par/task"
)

// Strategy selects the per-range sort.
type Strategy int

const (
	Quick Strategy = iota
	Shell
	ShellPow2
	Radix
)

func (s Strategy) String() string {
	switch s {
	case Quick:
		return "quick"
	case Shell:
		return "shell"
	case ShellPow2:
		return "shell-pow2"
	case Radix:
		return "radix"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy returns the Strategy with the given name.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range []Strategy{Quick, Shell, ShellPow2, Radix} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown sort strategy %q", name)
}

// Merge selects the network combining the sorted runs.
type Merge int

const (
	// MergeTree merges adjacent runs pairwise, bottom-up.
	MergeTree Merge = iota

	// MergeOddEven runs Batcher's odd-even block merge.
	MergeOddEven
)

func (m Merge) String() string {
	switch m {
	case MergeTree:
		return "tree"
	case MergeOddEven:
		return "odd-even"
	default:
		return fmt.Sprintf("Merge(%d)", int(m))
	}
}

// ParseMerge returns the Merge with the given name.
func ParseMerge(name string) (Merge, error) {
	for _, m := range []Merge{MergeTree, MergeOddEven} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown merge network %q", name)
}

// Options configures a sort Task.
type Options struct {
	Strategy Strategy
	Merge    Merge

	// FanOut bounds the goroutines a Quick run may fork. 0 divides the
	// hardware threads between the driver's workers.
	FanOut int
}

// runBuf is the per-part scratch: the sorted run and a radix buffer.
type runBuf struct {
	run, tmp []int32
}

// Task sorts the int32 input "in" into the output "out".
type Task struct {
	task.Base
	opts Options

	in, work []int32
	scratch  *par.Scratch[*runBuf]
	pool     *forkjoin.Pool
}

var schema = task.Schema{
	Inputs:  []task.Field{{Name: "in", Kind: task.KindInt32}},
	Outputs: []task.Field{{Name: "out", Kind: task.KindInt32}},
}

// NewTask returns a sort task over data, run on d.
func NewTask(data *task.Data, d par.Driver, opts Options) *Task {
	t := &Task{Base: task.NewBase("sort", data, d), opts: opts}
	t.scratch = par.NewScratch(0, func() *runBuf { return &runBuf{} })
	fanOut := opts.FanOut
	if fanOut <= 0 {
		fanOut = max(1, par.HardwareThreads()/t.Driver().Parallelism())
	}
	t.pool = forkjoin.New(fanOut)
	return t
}

// PreProcessing decodes the input.
func (t *Task) PreProcessing() bool {
	in, err := t.Data().In("in")
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	t.in, err = task.Decode[int32](in)
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	t.work = make([]int32, len(t.in))
	return true
}

// Validation checks that the output has room for exactly the input, and
// that ShellPow2 gets a power-of-two length.
func (t *Task) Validation() bool {
	if err := schema.Check(t.Data()); err != nil {
		return t.Fail("Validation", err)
	}
	in, _ := t.Data().In("in")
	out, _ := t.Data().Out("out")
	if in.Count != out.Count {
		return t.Fail("Validation", par.Invalid("output holds %d values, input %d", out.Count, in.Count))
	}
	if t.opts.Strategy == ShellPow2 {
		if err := merge.RequirePowerOfTwo(in.Count); err != nil {
			return t.Fail("Validation", err)
		}
	}
	return true
}

// ranges partitions n values. ShellPow2 uses a power-of-two number of runs
// so that every run has the same length.
func (t *Task) ranges(n int) []par.Range {
	p := t.Driver().Parallelism()
	if t.opts.Strategy == ShellPow2 {
		chunks := 1
		for chunks*2 <= min(p, n) {
			chunks *= 2
		}
		p = chunks
	}
	return par.Partition(n, p)
}

func (t *Task) sortRun(b *runBuf) {
	switch t.opts.Strategy {
	case Shell, ShellPow2:
		ShellSort(b.run)
	case Radix:
		if cap(b.tmp) < len(b.run) {
			b.tmp = make([]int32, len(b.run))
		}
		RadixSort(b.run, b.tmp)
	default:
		QuickSort(t.pool, b.run)
	}
}

// Run sorts every range and merges the sorted runs.
func (t *Task) Run() bool {
	n := len(t.in)
	if n == 0 {
		return true
	}
	d := t.Driver()
	ranges := t.ranges(n)
	parts := par.Parts(ranges)
	t.scratch.Ensure(len(parts))

	kernel := func(ctx context.Context, p par.Part) ([]int32, error) {
		b := t.scratch.Get(p.Index)
		b.run = append(b.run[:0], t.in[p.Range.Start:p.Range.End()]...)
		t.sortRun(b)
		return b.run, nil
	}
	combine := func(ctx context.Context, runs [][]int32) ([]int32, error) {
		if err := merge.Scatter(t.work, runs, ranges); err != nil {
			return nil, err
		}
		if t.opts.Merge == MergeOddEven {
			return t.work, merge.OddEven(ctx, d, t.work, ranges)
		}
		return t.work, merge.Tree(ctx, d, t.work, ranges)
	}
	_, err := par.Execute(t.Context(), d, parts, kernel, combine)
	return t.Check("Run", err)
}

// PostProcessing writes the sorted values to "out".
func (t *Task) PostProcessing() bool {
	out, err := t.Data().Out("out")
	if err != nil {
		return t.Fail("PostProcessing", err)
	}
	return t.Check("PostProcessing", task.Encode(out, t.work))
}

// Sorted returns the result of the last Run.
func (t *Task) Sorted() []int32 {
	return t.work
}
