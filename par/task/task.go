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

// Package task defines the four-phase lifecycle every parallel kernel is
// wrapped in, the typed buffers tasks exchange with their callers, and a
// perf harness that times repeated runs.
//
// A task is driven as:
//
//	t := sort.NewTask(data, driver)
//	ok := t.PreProcessing() && t.Validation() && t.Run() && t.PostProcessing()
//
// Every phase reports success as a boolean. The error behind a false return
// is kept by Base and available from Err.
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ajroetker/go-par/par"
)

// Task is the lifecycle contract. Phases are called in declaration order.
// Validation does not depend on PreProcessing having run, and Run may be
// called repeatedly after a single PreProcessing, producing the same output
// every time.
type Task interface {
	PreProcessing() bool
	Validation() bool
	Run() bool
	PostProcessing() bool
}

// Base carries the plumbing shared by every task: the task data, the
// driver, a context, a logger, and the last error.
type Base struct {
	name   string
	data   *Data
	driver par.Driver
	ctx    context.Context
	log    zerolog.Logger
	err    error
}

// NewBase returns a Base for the task called name. A nil driver selects the
// sequential one.
func NewBase(name string, data *Data, driver par.Driver) Base {
	if driver == nil {
		driver = par.NewSequential()
	}
	return Base{
		name:   name,
		data:   data,
		driver: driver,
		ctx:    context.Background(),
		log:    par.Logger().With().Str("task", name).Str("driver", driver.Name()).Logger(),
	}
}

// Name returns the task name.
func (b *Base) Name() string { return b.name }

// Data returns the task data.
func (b *Base) Data() *Data { return b.data }

// Driver returns the driver the task runs on.
func (b *Base) Driver() par.Driver { return b.driver }

// Context returns the context passed to kernels.
func (b *Base) Context() context.Context { return b.ctx }

// SetContext replaces the context passed to kernels.
func (b *Base) SetContext(ctx context.Context) { b.ctx = ctx }

// Logger returns the task logger.
func (b *Base) Logger() *zerolog.Logger { return &b.log }

// Err returns the error behind the last failed phase, or nil.
func (b *Base) Err() error { return b.err }

// Fail records err as the reason phase failed and returns false.
func (b *Base) Fail(phase string, err error) bool {
	b.err = fmt.Errorf("%s %s: %w", b.name, phase, err)
	b.log.Warn().Err(err).Str("phase", phase).Msg("phase failed")
	return false
}

// Check is Fail for a non-nil err, and clears the last error otherwise.
func (b *Base) Check(phase string, err error) bool {
	if err != nil {
		return b.Fail(phase, err)
	}
	b.err = nil
	return true
}

// ErrPhase is returned by Pipeline when a phase reports failure.
var ErrPhase = errors.New("phase failed")

// Errer is implemented by tasks that keep the error behind a failed phase.
type Errer interface {
	Err() error
}

// Pipeline runs the four phases of t in order and stops at the first
// failure.
func Pipeline(t Task) error {
	phases := []struct {
		name string
		fn   func() bool
	}{
		{"PreProcessing", t.PreProcessing},
		{"Validation", t.Validation},
		{"Run", t.Run},
		{"PostProcessing", t.PostProcessing},
	}
	for _, p := range phases {
		if !p.fn() {
			return phaseError(t, p.name)
		}
	}
	return nil
}

func phaseError(t Task, phase string) error {
	if e, ok := t.(Errer); ok && e.Err() != nil {
		return fmt.Errorf("%w: %s: %w", ErrPhase, phase, e.Err())
	}
	return fmt.Errorf("%w: %s", ErrPhase, phase)
}
