// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"

	"github.com/samber/lo"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/contrib/graph"
	"github.com/ajroetker/go-par/par/contrib/hull"
	"github.com/ajroetker/go-par/par/contrib/image"
	"github.com/ajroetker/go-par/par/contrib/integrate"
	"github.com/ajroetker/go-par/par/contrib/matmul"
	"github.com/ajroetker/go-par/par/contrib/sort"
	"github.com/ajroetker/go-par/par/task"
)

// workload carries the run flags a kernel builder may use.
type workload struct {
	size     int
	seed     int64
	strategy string
	merge    string
	fn       string
}

func (w workload) rng() *rand.Rand {
	return rand.New(rand.NewSource(w.seed))
}

type kernel struct {
	name, desc string
	size       int // used when --size is not set
	build      func(w workload, d par.Driver) (task.Task, error)
}

var kernels = []kernel{
	{"sort", "sort size int32 values (--strategy, --merge)", 1 << 20, buildSort},
	{"matmul-dense", "multiply two dense size x size matrices", 256, buildDense},
	{"matmul-sparse", "multiply two sparse size x size CRS matrices, 5% dense", 1024, buildSparse},
	{"convolve", "3x3 gaussian blur of a size x size image", 1024, buildConvolve},
	{"simpson", "Simpson rule on size subintervals over [0, pi] (--func)", 1 << 20, buildSimpson},
	{"midpoint", "midpoint rule on a size x size grid over [0,1]^2 (--func)", 1024, buildMidpoint},
	{"hull", "convex hull of size random points", 1 << 18, buildHull},
	{"dijkstra", "shortest paths in a random graph of size vertices", 2048, buildDijkstra},
	{"bellman-ford", "shortest paths in a random graph of size vertices", 4096, buildBellmanFord},
}

func findKernel(name string) (kernel, error) {
	k, ok := lo.Find(kernels, func(k kernel) bool { return k.name == name })
	if !ok {
		return kernel{}, fmt.Errorf("unknown kernel %q, see parbench list", name)
	}
	return k, nil
}

func buildSort(w workload, d par.Driver) (task.Task, error) {
	strategy, err := sort.ParseStrategy(w.strategy)
	if err != nil {
		return nil, err
	}
	merge, err := sort.ParseMerge(w.merge)
	if err != nil {
		return nil, err
	}
	rng := w.rng()
	values := make([]int32, w.size)
	for i := range values {
		values[i] = rng.Int31() - math.MaxInt32/2
	}
	data := &task.Data{
		Inputs:  []task.Buffer{task.NewBuffer("in", values)},
		Outputs: []task.Buffer{task.Alloc("out", task.KindInt32, w.size)},
	}
	return sort.NewTask(data, d, sort.Options{Strategy: strategy, Merge: merge}), nil
}

func randomMatrix(rng *rand.Rand, n int, density float64) []float64 {
	m := make([]float64, n*n)
	for i := range m {
		if rng.Float64() < density {
			m[i] = rng.Float64()*2 - 1
		}
	}
	return m
}

func buildDense(w workload, d par.Driver) (task.Task, error) {
	rng := w.rng()
	a, b := randomMatrix(rng, w.size, 1), randomMatrix(rng, w.size, 1)
	return matmul.NewDenseTask(matmul.DenseData(a, w.size, w.size, b, w.size, w.size), d), nil
}

func buildSparse(w workload, d par.Driver) (task.Task, error) {
	rng := w.rng()
	a := matmul.FromDense(w.size, w.size, randomMatrix(rng, w.size, 0.05))
	b := matmul.FromDense(w.size, w.size, randomMatrix(rng, w.size, 0.05))
	return matmul.NewSparseTask(matmul.SparseData(a, b), d), nil
}

func buildConvolve(w workload, d par.Driver) (task.Task, error) {
	rng := w.rng()
	img := image.NewImage(w.size, w.size)
	for i := range img.Pix() {
		img.Pix()[i] = rng.Float64()
	}
	return image.NewConvolveTask(image.ConvolveData(img, image.Gaussian()), d), nil
}

func buildSimpson(w workload, d par.Driver) (task.Task, error) {
	f, ok := integrate.Named(cmp.Or(w.fn, "sin"))
	if !ok {
		return nil, fmt.Errorf("unknown integrand %q", w.fn)
	}
	// Simpson needs an even count.
	n := w.size + w.size%2
	return integrate.NewSimpsonTask(f, integrate.SimpsonData(0, math.Pi, n), d), nil
}

func buildMidpoint(w workload, d par.Driver) (task.Task, error) {
	f, ok := integrate.Named2(cmp.Or(w.fn, "gauss"))
	if !ok {
		return nil, fmt.Errorf("unknown two-variable integrand %q", w.fn)
	}
	box := integrate.Box{X0: 0, X1: 1, Y0: 0, Y1: 1}
	return integrate.NewMidpointTask(f, integrate.MidpointData(box, w.size, w.size), d), nil
}

func buildHull(w workload, d par.Driver) (task.Task, error) {
	rng := w.rng()
	points := make([]hull.Point, w.size)
	for i := range points {
		points[i] = hull.Point{X: rng.NormFloat64(), Y: rng.NormFloat64()}
	}
	return hull.NewTask(hull.Data(points), d), nil
}

// randomGraph has 8 edges per vertex with weights in [0, 10).
func randomGraph(w workload) graph.CSR {
	rng := w.rng()
	edges := make([]graph.Edge, 0, 8*w.size)
	for u := range w.size {
		for range 8 {
			v := rng.Intn(w.size)
			edges = append(edges, graph.Edge{From: int32(u), To: int32(v), Weight: 10 * rng.Float64()})
		}
	}
	return graph.FromEdges(w.size, edges)
}

func buildDijkstra(w workload, d par.Driver) (task.Task, error) {
	return graph.NewDijkstraTask(graph.Data(randomGraph(w), 0), d), nil
}

func buildBellmanFord(w workload, d par.Driver) (task.Task, error) {
	return graph.NewBellmanFordTask(graph.Data(randomGraph(w), 0), d), nil
}
