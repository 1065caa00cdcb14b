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

package par

import (
	"fmt"

	"github.com/rs/zerolog"
)

// State is the stage of one execution of a kernel over a partition.
type State int

const (
	// StateIdle is the initial state, before the partition exists.
	StateIdle State = iota

	// StatePartitioned means the parts are known but nothing was dispatched.
	StatePartitioned

	// StateDispatched means every part was handed to the driver.
	StateDispatched

	// StateJoined means every kernel invocation returned successfully.
	StateJoined

	// StateCombined means the partial results were reduced into the output.
	StateCombined

	// StateDone is the terminal success state.
	StateDone

	// StateFailed is the terminal failure state. The output is not valid.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePartitioned:
		return "partitioned"
	case StateDispatched:
		return "dispatched"
	case StateJoined:
		return "joined"
	case StateCombined:
		return "combined"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Execution tracks the state of a single run. Transitions are linear; the
// only branch is the jump to StateFailed from any non-terminal state.
type Execution struct {
	state  State
	driver string
	log    zerolog.Logger
}

// NewExecution creates an idle execution for the named driver.
func NewExecution(driver string) *Execution {
	return &Execution{
		driver: driver,
		log:    Logger().With().Str("driver", driver).Logger(),
	}
}

// State returns the current state.
func (e *Execution) State() State {
	return e.state
}

// Advance moves to the next state. Only the immediate successor is accepted.
func (e *Execution) Advance(to State) error {
	if e.state.Terminal() || to != e.state+1 || to == StateFailed {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, e.state, to)
	}
	e.log.Debug().Stringer("from", e.state).Stringer("to", to).Msg("transition")
	e.state = to
	return nil
}

// Fail moves to StateFailed and returns err unchanged, so that callers can
// write `return zero, exec.Fail(err)`.
func (e *Execution) Fail(err error) error {
	if e.state.Terminal() {
		return err
	}
	e.log.Debug().Err(err).Stringer("from", e.state).Msg("failed")
	e.state = StateFailed
	return err
}
