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

// Package graph provides single-source shortest paths over weighted
// directed graphs in compressed sparse row (CSR) form.
//
// Dijkstra requires non-negative weights. Each step selects the closest
// unvisited vertex with a parallel reduction over vertex ranges.
//
// BellmanFord accepts negative weights. Each round recomputes the distance
// of every vertex from its incoming edges, in parallel over vertex ranges,
// with a barrier between rounds. A change in round N of an N-vertex graph
// means a negative cycle is reachable from the source, and the run fails.
package graph

import (
	"cmp"
	"slices"

	"github.com/ajroetker/go-par/par"
)

// Edge is a weighted directed edge.
type Edge struct {
	From, To int32
	Weight   float64
}

// CSR is a directed graph in compressed sparse row form. The edges leaving
// vertex v are Targets[Offsets[v]:Offsets[v+1]] with the matching Weights.
type CSR struct {
	N       int
	Offsets []int32
	Targets []int32
	Weights []float64
}

// FromEdges builds the CSR form of the graph with n vertices and the given
// edges. Edges leaving a vertex keep their relative order.
func FromEdges(n int, edges []Edge) CSR {
	g := CSR{N: n, Offsets: make([]int32, n+1)}
	for _, e := range edges {
		g.Offsets[e.From+1]++
	}
	for v := range n {
		g.Offsets[v+1] += g.Offsets[v]
	}
	g.Targets = make([]int32, len(edges))
	g.Weights = make([]float64, len(edges))
	next := slices.Clone(g.Offsets[:n])
	for _, e := range edges {
		i := next[e.From]
		g.Targets[i] = e.To
		g.Weights[i] = e.Weight
		next[e.From]++
	}
	return g
}

// Edges returns the edges of g in CSR order.
func (g CSR) Edges() []Edge {
	edges := make([]Edge, 0, len(g.Targets))
	for v := range g.N {
		for i := g.Offsets[v]; i < g.Offsets[v+1]; i++ {
			edges = append(edges, Edge{From: int32(v), To: g.Targets[i], Weight: g.Weights[i]})
		}
	}
	return edges
}

// Transpose returns g with every edge reversed.
func (g CSR) Transpose() CSR {
	edges := g.Edges()
	for i := range edges {
		edges[i].From, edges[i].To = edges[i].To, edges[i].From
	}
	slices.SortStableFunc(edges, func(a, b Edge) int { return cmp.Compare(a.From, b.From) })
	return FromEdges(g.N, edges)
}

// Validate checks the structure of g.
func (g CSR) Validate() error {
	if g.N < 0 || len(g.Offsets) != g.N+1 {
		return par.Invalid("CSR offsets have %d entries for %d vertices", len(g.Offsets), g.N)
	}
	if len(g.Targets) != len(g.Weights) {
		return par.Invalid("CSR has %d targets but %d weights", len(g.Targets), len(g.Weights))
	}
	if g.Offsets[0] != 0 || int(g.Offsets[g.N]) != len(g.Targets) {
		return par.Invalid("CSR offsets span [%d, %d), want [0, %d)", g.Offsets[0], g.Offsets[g.N], len(g.Targets))
	}
	for v := range g.N {
		if g.Offsets[v] > g.Offsets[v+1] {
			return par.Invalid("CSR offsets decrease at vertex %d", v)
		}
	}
	for i, t := range g.Targets {
		if t < 0 || int(t) >= g.N {
			return par.Invalid("edge %d targets vertex %d of %d", i, t, g.N)
		}
	}
	return nil
}

// CheckNonNegative returns a validation error if any weight is negative.
func (g CSR) CheckNonNegative() error {
	for v := range g.N {
		for i := g.Offsets[v]; i < g.Offsets[v+1]; i++ {
			if g.Weights[i] < 0 {
				return par.Invalid("edge %d->%d has negative weight %g", v, g.Targets[i], g.Weights[i])
			}
		}
	}
	return nil
}
