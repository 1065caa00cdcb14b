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

// Package comm implements an MPI-like, fixed-size process group inside one
// Go process. Every rank is a goroutine with its own mailbox per peer;
// ranks exchange data only through Send/Recv and the collectives built on
// them, and slices are copied on the way, so ranks behave as if they had
// separate address spaces.
//
// A program is written SPMD style: the same function runs on every rank and
// branches on Rank():
//
//	world := comm.NewWorld(4)
//	err := world.Run(ctx, func(ctx context.Context, c *comm.Comm) error {
//	    chunk, err := comm.Scatterv(ctx, c, 0, data, counts, displs)
//	    if err != nil {
//	        return err
//	    }
//	    process(chunk)
//	    return comm.Gatherv(ctx, c, 0, chunk, counts, displs, out)
//	})
//
// All calls block. Collectives must be called by every rank of the
// communicator in the same order. When one rank returns an error, the
// context handed to the others is cancelled and their blocking calls return,
// so a failure never hangs the group.
package comm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrTagMismatch is returned when a received message does not carry the
	// expected communicator and tag, i.e. ranks called operations in
	// different orders.
	ErrTagMismatch = errors.New("comm: message tag mismatch")

	// ErrRank is returned for a rank outside [0, Size).
	ErrRank = errors.New("comm: rank out of range")

	// ErrCount is returned when count/displacement tables do not match the
	// communicator or the buffers.
	ErrCount = errors.New("comm: bad counts")
)

// mailboxDepth bounds the number of in-flight messages per ordered pair.
const mailboxDepth = 64

type message struct {
	comm    uint64
	tag     int
	payload any
}

// World is a process group of a fixed number of ranks. A World may run
// many programs one after the other, but not concurrently.
type World struct {
	size   int
	boxes  [][]chan message // boxes[dst][src]
	nextID atomic.Uint64
}

// NewWorld creates a world of size ranks. size < 1 is treated as 1.
func NewWorld(size int) *World {
	size = max(1, size)
	w := &World{size: size, boxes: make([][]chan message, size)}
	for dst := range size {
		w.boxes[dst] = make([]chan message, size)
		for src := range size {
			w.boxes[dst][src] = make(chan message, mailboxDepth)
		}
	}
	return w
}

// Size returns the number of ranks.
func (w *World) Size() int {
	return w.size
}

// Run executes fn once per rank, each on its own goroutine with the world
// communicator, and waits for all of them. The first error cancels the
// context of every rank and is returned.
func (w *World) Run(ctx context.Context, fn func(ctx context.Context, c *Comm) error) error {
	members := make([]int, w.size)
	for i := range members {
		members[i] = i
	}

	g, gctx := errgroup.WithContext(ctx)
	for rank := range w.size {
		c := &Comm{world: w, id: 0, rank: rank, members: members}
		g.Go(func() error {
			return fn(gctx, c)
		})
	}
	err := g.Wait()
	if err != nil {
		// Messages of an aborted program must not leak into the next one.
		w.drain()
	}
	return err
}

func (w *World) drain() {
	for _, row := range w.boxes {
		for _, box := range row {
			for len(box) > 0 {
				<-box
			}
		}
	}
}

// Comm is one rank's handle on a communicator: the world, or a subgroup
// created by Split.
type Comm struct {
	world   *World
	id      uint64
	rank    int
	members []int // world rank of every communicator rank
}

// Rank returns the rank of the caller in this communicator.
func (c *Comm) Rank() int {
	return c.rank
}

// Size returns the number of ranks in this communicator.
func (c *Comm) Size() int {
	return len(c.members)
}

func (c *Comm) checkRank(r int) error {
	if r < 0 || r >= len(c.members) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrRank, r, len(c.members))
	}
	return nil
}

// Send delivers v to rank dst with the given tag. It blocks only while the
// destination mailbox is full.
func (c *Comm) Send(ctx context.Context, dst, tag int, v any) error {
	if err := c.checkRank(dst); err != nil {
		return err
	}
	box := c.world.boxes[c.members[dst]][c.members[c.rank]]
	select {
	case box <- message{comm: c.id, tag: tag, payload: v}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv blocks until the next message from rank src arrives and returns its
// payload. The message must carry this communicator and tag.
func (c *Comm) Recv(ctx context.Context, src, tag int) (any, error) {
	if err := c.checkRank(src); err != nil {
		return nil, err
	}
	box := c.world.boxes[c.members[c.rank]][c.members[src]]
	select {
	case msg := <-box:
		if msg.comm != c.id || msg.tag != tag {
			return nil, fmt.Errorf("%w: from rank %d got comm %d tag %d, want comm %d tag %d",
				ErrTagMismatch, src, msg.comm, msg.tag, c.id, tag)
		}
		return msg.payload, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recvAs receives and type-asserts the payload.
func recvAs[T any](ctx context.Context, c *Comm, src, tag int) (T, error) {
	var zero T
	payload, err := c.Recv(ctx, src, tag)
	if err != nil {
		return zero, err
	}
	v, ok := payload.(T)
	if !ok {
		return zero, fmt.Errorf("%w: from rank %d got %T, want %T", ErrTagMismatch, src, payload, zero)
	}
	return v, nil
}
