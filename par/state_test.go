// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package par

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionLinear(t *testing.T) {
	e := NewExecution("test")
	require.Equal(t, StateIdle, e.State())

	for _, s := range []State{StatePartitioned, StateDispatched, StateJoined, StateCombined, StateDone} {
		require.NoError(t, e.Advance(s))
		assert.Equal(t, s, e.State())
	}
	assert.True(t, e.State().Terminal())
	assert.ErrorIs(t, e.Advance(StateFailed), ErrIllegalTransition)
}

func TestExecutionRejectsSkips(t *testing.T) {
	e := NewExecution("test")
	assert.ErrorIs(t, e.Advance(StateDispatched), ErrIllegalTransition)
	assert.ErrorIs(t, e.Advance(StateIdle), ErrIllegalTransition)
	assert.ErrorIs(t, e.Advance(StateFailed), ErrIllegalTransition, "failure goes through Fail")
	assert.Equal(t, StateIdle, e.State())
}

func TestExecutionFail(t *testing.T) {
	e := NewExecution("test")
	require.NoError(t, e.Advance(StatePartitioned))
	require.NoError(t, e.Advance(StateDispatched))

	boom := errors.New("boom")
	assert.Same(t, boom, e.Fail(boom))
	assert.Equal(t, StateFailed, e.State())

	// No way out of a terminal state, and no partial commit.
	assert.ErrorIs(t, e.Advance(StateJoined), ErrIllegalTransition)
	assert.ErrorIs(t, e.Advance(StateCombined), ErrIllegalTransition)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "combined", StateCombined.String())
	assert.Equal(t, "unknown", State(42).String())
}
