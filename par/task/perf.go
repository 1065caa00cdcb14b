// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package task

import (
	"time"

	"github.com/ajroetker/go-par/par"
)

// RunType tells which phases a perf measurement covered.
type RunType int

const (
	// PipelineRunType times every phase on each repetition.
	PipelineRunType RunType = iota

	// TaskRunType times only Run.
	TaskRunType
)

func (r RunType) String() string {
	if r == TaskRunType {
		return "task_run"
	}
	return "pipeline"
}

// Perf repeats a task and times it.
type Perf struct {
	// Runs is the number of repetitions, at least 1.
	Runs int

	// Timer returns a monotonic reading. Nil uses time.Now.
	Timer func() time.Duration
}

// Results of a perf measurement.
type Results struct {
	TotalTime   time.Duration
	AverageTime time.Duration
	Runs        int
	Type        RunType
}

func (p Perf) clock() func() time.Duration {
	if p.Timer != nil {
		return p.Timer
	}
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

func (p Perf) runs() int {
	return max(1, p.Runs)
}

// PipelineRun runs all four phases of t Runs times.
func (p Perf) PipelineRun(t Task) (Results, error) {
	clock := p.clock()
	begin := clock()
	for range p.runs() {
		if err := Pipeline(t); err != nil {
			return Results{}, err
		}
	}
	return p.results(clock()-begin, PipelineRunType), nil
}

// TaskRun runs PreProcessing and Validation once, Run Runs times, and
// PostProcessing once. Only the Run calls are timed.
func (p Perf) TaskRun(t Task) (Results, error) {
	if !t.PreProcessing() {
		return Results{}, phaseError(t, "PreProcessing")
	}
	if !t.Validation() {
		return Results{}, phaseError(t, "Validation")
	}

	clock := p.clock()
	begin := clock()
	for range p.runs() {
		if !t.Run() {
			return Results{}, phaseError(t, "Run")
		}
	}
	total := clock() - begin

	if !t.PostProcessing() {
		return Results{}, phaseError(t, "PostProcessing")
	}
	return p.results(total, TaskRunType), nil
}

func (p Perf) results(total time.Duration, typ RunType) Results {
	r := Results{
		TotalTime:   total,
		AverageTime: total / time.Duration(p.runs()),
		Runs:        p.runs(),
		Type:        typ,
	}
	par.Logger().Info().
		Stringer("type", typ).
		Int("runs", r.Runs).
		Dur("total", r.TotalTime).
		Dur("average", r.AverageTime).
		Msg("perf")
	return r
}
