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

// Package hull computes 2-D convex hulls in parallel.
//
// Every range of input points is reduced to its own hull with Andrew's
// monotone chain. The hull of the union of the partial hull vertices is the
// hull of all points, so the combiner runs the same algorithm once more on
// the partial vertices. Collinear boundary points are dropped, which makes
// the result independent of the partition.
package hull

import (
	"cmp"
	"context"
	"slices"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

// Point is a point in the plane.
type Point = task.Point2D

// cross returns the z component of (a - o) x (b - o): positive for a
// counter-clockwise turn o, a, b.
func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func comparePoints(a, b Point) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	return cmp.Compare(a.Y, b.Y)
}

// MonotoneChain returns the vertices of the convex hull of points in
// counter-clockwise order, starting from the lowest-leftmost point. points
// is reordered.
func MonotoneChain(points []Point) []Point {
	slices.SortFunc(points, comparePoints)
	points = slices.CompactFunc(points, func(a, b Point) bool { return a == b })
	if len(points) < 3 {
		return slices.Clone(points)
	}

	hull := make([]Point, 0, 2*len(points))
	for _, p := range points {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(points) - 2; i >= 0; i-- {
		p := points[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// minPoints is the smallest range Compute hands a worker.
const minPoints = 64

// Compute returns the convex hull of points on d. points is not modified.
func Compute(ctx context.Context, d par.Driver, points []Point) ([]Point, error) {
	ranges := par.PartitionGrain(len(points), d.Parallelism(), minPoints)
	return par.Execute(ctx, d, par.Parts(ranges),
		func(ctx context.Context, p par.Part) ([]Point, error) {
			return MonotoneChain(slices.Clone(points[p.Range.Start:p.Range.End()])), nil
		},
		func(ctx context.Context, partials [][]Point) ([]Point, error) {
			return MonotoneChain(slices.Concat(partials...)), nil
		})
}
