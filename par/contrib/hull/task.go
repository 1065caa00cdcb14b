// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package hull

import (
	"slices"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

// Task computes the hull of the point input "points" into the point
// output "hull".
type Task struct {
	task.Base
	points, hull []Point
}

var schema = task.Schema{
	Inputs: []task.Field{{Name: "points", Kind: task.KindPoint2D, MinCount: 3}},
}

// Data builds the task data for points.
func Data(points []Point) *task.Data {
	return &task.Data{Inputs: []task.Buffer{task.NewBuffer("points", points)}}
}

// NewTask returns a hull task over data, run on d.
func NewTask(data *task.Data, d par.Driver) *Task {
	return &Task{Base: task.NewBase("hull", data, d)}
}

// PreProcessing decodes the points.
func (t *Task) PreProcessing() bool {
	b, err := t.Data().In("points")
	if err != nil {
		return t.Fail("PreProcessing", err)
	}
	t.points, err = task.Decode[Point](b)
	return t.Check("PreProcessing", err)
}

// Validation requires at least 3 distinct points that are not all on one
// line.
func (t *Task) Validation() bool {
	if err := schema.Check(t.Data()); err != nil {
		return t.Fail("Validation", err)
	}
	b, _ := t.Data().In("points")
	points, err := task.Decode[Point](b)
	if err != nil {
		return t.Fail("Validation", err)
	}
	return t.Check("Validation", checkGeometry(points))
}

// checkGeometry rejects point sets whose hull has no area.
func checkGeometry(points []Point) error {
	first := points[0]
	i := slices.IndexFunc(points, func(p Point) bool { return p != first })
	if i < 0 {
		return par.Invalid("degenerate hull: all %d points coincide", len(points))
	}
	second := points[i]
	if !slices.ContainsFunc(points[i+1:], func(p Point) bool { return cross(first, second, p) != 0 }) {
		return par.Invalid("degenerate hull: all %d points are collinear", len(points))
	}
	return nil
}

// Run computes the hull.
func (t *Task) Run() bool {
	h, err := Compute(t.Context(), t.Driver(), t.points)
	if err != nil {
		return t.Fail("Run", err)
	}
	t.hull = h
	return true
}

// PostProcessing stores the hull vertices as "hull".
func (t *Task) PostProcessing() bool {
	t.Data().SetOut(task.NewBuffer("hull", t.hull))
	return true
}

// Hull returns the vertices computed by the last Run.
func (t *Task) Hull() []Point {
	return t.hull
}
