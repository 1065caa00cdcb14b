// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

var schema = task.Schema{
	Inputs: []task.Field{
		{Name: "offsets", Kind: task.KindInt32, MinCount: 1},
		{Name: "targets", Kind: task.KindInt32},
		{Name: "weights", Kind: task.KindFloat64},
		{Name: "source", Kind: task.KindInt32, MinCount: 1},
	},
}

// Data builds the task data for shortest paths in g from source.
func Data(g CSR, source int) *task.Data {
	return &task.Data{Inputs: []task.Buffer{
		task.NewBuffer("offsets", g.Offsets),
		task.NewBuffer("targets", g.Targets),
		task.NewBuffer("weights", g.Weights),
		task.NewBuffer("source", []int32{int32(source)}),
	}}
}

// pathTask holds what both shortest path tasks share: the graph decoded
// from "offsets", "targets" and "weights", the "source" vertex, and the
// float64 output "dist".
type pathTask struct {
	task.Base
	graph  CSR
	source int
	dist   []float64
	solve  func(ctx context.Context, d par.Driver, g CSR, source int) ([]float64, error)
}

func (t *pathTask) decode() (CSR, int, error) {
	var (
		g   CSR
		src []int32
		err error
	)
	lookup := t.Data().In
	if g.Offsets, err = decodeInput[int32](lookup, "offsets"); err != nil {
		return CSR{}, 0, err
	}
	if g.Targets, err = decodeInput[int32](lookup, "targets"); err != nil {
		return CSR{}, 0, err
	}
	if g.Weights, err = decodeInput[float64](lookup, "weights"); err != nil {
		return CSR{}, 0, err
	}
	if src, err = decodeInput[int32](lookup, "source"); err != nil {
		return CSR{}, 0, err
	}
	if len(g.Offsets) == 0 || len(src) == 0 {
		return CSR{}, 0, par.Invalid("offsets and source are required")
	}
	g.N = len(g.Offsets) - 1
	return g, int(src[0]), nil
}

// PreProcessing decodes the graph and the source.
func (t *pathTask) PreProcessing() bool {
	var err error
	t.graph, t.source, err = t.decode()
	return t.Check("PreProcessing", err)
}

func decodeInput[T task.Elem](lookup func(string) (*task.Buffer, error), name string) ([]T, error) {
	b, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return task.Decode[T](b)
}

// validate decodes the task data again, so that it does not depend on
// PreProcessing, and returns the checked graph.
func (t *pathTask) validate() (CSR, error) {
	if err := schema.Check(t.Data()); err != nil {
		return CSR{}, err
	}
	g, source, err := t.decode()
	if err != nil {
		return CSR{}, err
	}
	if err := g.Validate(); err != nil {
		return CSR{}, err
	}
	return g, checkSource(g, source)
}

// Run solves the shortest paths from the source.
func (t *pathTask) Run() bool {
	dist, err := t.solve(t.Context(), t.Driver(), t.graph, t.source)
	if err != nil {
		return t.Fail("Run", err)
	}
	t.dist = dist
	return true
}

// PostProcessing stores the distances as "dist".
func (t *pathTask) PostProcessing() bool {
	t.Data().SetOut(task.NewBuffer("dist", t.dist))
	return true
}

// Distances returns the distances computed by the last Run, +Inf for
// unreachable vertices.
func (t *pathTask) Distances() []float64 {
	return t.dist
}

// DijkstraTask solves shortest paths on graphs without negative weights.
type DijkstraTask struct {
	pathTask
}

// NewDijkstraTask returns a Dijkstra task over data, run on d.
func NewDijkstraTask(data *task.Data, d par.Driver) *DijkstraTask {
	return &DijkstraTask{pathTask{Base: task.NewBase("dijkstra", data, d), solve: Dijkstra}}
}

// Validation checks the graph and rejects negative weights.
func (t *DijkstraTask) Validation() bool {
	g, err := t.validate()
	if err != nil {
		return t.Fail("Validation", err)
	}
	return t.Check("Validation", g.CheckNonNegative())
}

// BellmanFordTask solves shortest paths on graphs that may have negative
// weights. Run fails if a negative cycle is reachable from the source.
type BellmanFordTask struct {
	pathTask
}

// NewBellmanFordTask returns a Bellman-Ford task over data, run on d.
func NewBellmanFordTask(data *task.Data, d par.Driver) *BellmanFordTask {
	return &BellmanFordTask{pathTask{Base: task.NewBase("bellman-ford", data, d), solve: BellmanFord}}
}

// Validation checks the graph.
func (t *BellmanFordTask) Validation() bool {
	_, err := t.validate()
	return t.Check("Validation", err)
}
