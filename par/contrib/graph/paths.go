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

package graph

import (
	"context"
	"math"

	"github.com/ajroetker/go-par/par"
)

// candidate is the closest unvisited vertex of one range.
type candidate struct {
	vertex int
	dist   float64
}

var none = candidate{vertex: -1, dist: math.Inf(1)}

// closer returns the closer of a and b, a on ties.
func closer(a, b candidate) candidate {
	if b.vertex >= 0 && (a.vertex < 0 || b.dist < a.dist) {
		return b
	}
	return a
}

// initDistances fills dist with +Inf on d, and 0 at source.
func initDistances(ctx context.Context, d par.Driver, dist []float64, ranges []par.Range, source int) error {
	err := d.Dispatch(ctx, len(ranges), func(ctx context.Context, i int) error {
		r := ranges[i]
		for v := r.Start; v < r.End(); v++ {
			dist[v] = math.Inf(1)
		}
		return nil
	})
	if err != nil {
		return err
	}
	dist[source] = 0
	return nil
}

func checkSource(g CSR, source int) error {
	if source < 0 || source >= g.N {
		return par.Invalid("source %d outside %d vertices", source, g.N)
	}
	return nil
}

// Dijkstra returns the distances from source to every vertex of g, +Inf for
// unreachable ones. Negative weights are rejected.
func Dijkstra(ctx context.Context, d par.Driver, g CSR, source int) ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := checkSource(g, source); err != nil {
		return nil, err
	}
	if err := g.CheckNonNegative(); err != nil {
		return nil, err
	}

	ranges := par.Partition(g.N, d.Parallelism())
	parts := par.Parts(ranges)
	dist := make([]float64, g.N)
	visited := make([]bool, g.N)
	if err := initDistances(ctx, d, dist, ranges, source); err != nil {
		return nil, err
	}

	kernel := func(ctx context.Context, p par.Part) (candidate, error) {
		best := none
		for v := p.Range.Start; v < p.Range.End(); v++ {
			if !visited[v] && !math.IsInf(dist[v], 1) && dist[v] < best.dist {
				best = candidate{vertex: v, dist: dist[v]}
			}
		}
		return best, nil
	}
	for range g.N {
		u, err := par.Reduce(ctx, d, parts, kernel, closer)
		if err != nil {
			return nil, err
		}
		if u.vertex < 0 {
			break
		}
		visited[u.vertex] = true
		for i := g.Offsets[u.vertex]; i < g.Offsets[u.vertex+1]; i++ {
			v := g.Targets[i]
			if alt := u.dist + g.Weights[i]; alt < dist[v] {
				dist[v] = alt
			}
		}
	}
	return dist, nil
}

// BellmanFord returns the distances from source to every vertex of g, +Inf
// for unreachable ones. A negative cycle reachable from source is a run
// failure.
func BellmanFord(ctx context.Context, d par.Driver, g CSR, source int) ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := checkSource(g, source); err != nil {
		return nil, err
	}
	return bellmanFord(ctx, d, g.Transpose(), source)
}

// bellmanFord runs on the transposed graph: the edges leaving v in in are
// the edges entering v in the original graph.
func bellmanFord(ctx context.Context, d par.Driver, in CSR, source int) ([]float64, error) {
	ranges := par.Partition(in.N, d.Parallelism())
	parts := par.Parts(ranges)
	cur := make([]float64, in.N)
	next := make([]float64, in.N)
	if err := initDistances(ctx, d, cur, ranges, source); err != nil {
		return nil, err
	}

	or := func(a, b bool) bool { return a || b }
	for round := 1; round <= in.N; round++ {
		changed, err := par.Reduce(ctx, d, parts,
			func(ctx context.Context, p par.Part) (bool, error) {
				changed := false
				for v := p.Range.Start; v < p.Range.End(); v++ {
					best := cur[v]
					for i := in.Offsets[v]; i < in.Offsets[v+1]; i++ {
						if du := cur[in.Targets[i]]; !math.IsInf(du, 1) && du+in.Weights[i] < best {
							best = du + in.Weights[i]
						}
					}
					next[v] = best
					changed = changed || best != cur[v]
				}
				return changed, nil
			},
			or)
		if err != nil {
			return nil, err
		}
		cur, next = next, cur
		if !changed {
			return cur, nil
		}
		if round == in.N {
			break
		}
	}
	return nil, par.Failure("negative cycle reachable from vertex %d", source)
}
