// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package par

import "golang.org/x/sys/cpu"

// Scratch holds one private value per part, allocated once and reused
// across runs. Slots are padded to cache lines so neighbouring workers do
// not share a line.
//
// Usage:
//
//	scratch := par.NewScratch(len(parts), func() []int32 { return make([]int32, 0, 1024) })
//	kernel := func(ctx context.Context, p par.Part) (int, error) {
//	    buf := scratch.Get(p.Index)
//	    ...
//	}
type Scratch[S any] struct {
	slots []scratchSlot[S]
	alloc func() S
}

type scratchSlot[S any] struct {
	value S
	_     cpu.CacheLinePad
}

// NewScratch allocates n slots using alloc.
func NewScratch[S any](n int, alloc func() S) *Scratch[S] {
	s := &Scratch[S]{alloc: alloc}
	s.Ensure(n)
	return s
}

// Ensure grows the scratch to at least n slots, keeping existing values.
// It must not be called while kernels are running.
func (s *Scratch[S]) Ensure(n int) {
	for len(s.slots) < n {
		s.slots = append(s.slots, scratchSlot[S]{value: s.alloc()})
	}
}

// Len returns the number of slots.
func (s *Scratch[S]) Len() int {
	return len(s.slots)
}

// Get returns the value of slot i. Only the worker running part i may use it.
func (s *Scratch[S]) Get(i int) S {
	return s.slots[i].value
}

// Set replaces the value of slot i, e.g. after growing a buffer.
func (s *Scratch[S]) Set(i int, v S) {
	s.slots[i].value = v
}
