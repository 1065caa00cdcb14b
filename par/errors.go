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
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a structural precondition violation detected before
	// any partitioning (size mismatch, malformed dimensions, ...).
	ErrValidation = errors.New("validation failed")

	// ErrRunFailure marks an unrecoverable condition detected by a kernel
	// while computing. No partial output is meaningful after it.
	ErrRunFailure = errors.New("run failed")

	// ErrIllegalTransition is returned when an Execution is advanced out of
	// its linear order.
	ErrIllegalTransition = errors.New("illegal state transition")

	// ErrClosed is returned when dispatching on a closed driver.
	ErrClosed = errors.New("driver closed")
)

// KernelError reports the part whose kernel invocation failed.
type KernelError struct {
	Part Part
	Err  error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("kernel failed on part %d %v: %v", e.Part.Index, e.Part.Range, e.Err)
}

func (e *KernelError) Unwrap() error {
	return e.Err
}

// Invalid returns an error wrapping ErrValidation.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Failure returns an error wrapping ErrRunFailure.
func Failure(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRunFailure, fmt.Sprintf(format, args...))
}
