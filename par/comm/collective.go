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

package comm

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// Reserved tags for collectives. User tags should be non-negative.
const (
	tagBcast = -1 - iota
	tagScatter
	tagGather
)

// Undefined is the Split color of ranks that do not join any subgroup.
const Undefined = -1

// Barrier blocks until every rank of the communicator has called it.
func Barrier(ctx context.Context, c *Comm) error {
	if _, err := Gather(ctx, c, 0, struct{}{}); err != nil {
		return err
	}
	_, err := Bcast(ctx, c, 0, struct{}{})
	return err
}

// Bcast sends v from root to every rank and returns it on all of them.
// Values are shared as-is, not copied.
func Bcast[T any](ctx context.Context, c *Comm, root int, v T) (T, error) {
	if err := c.checkRank(root); err != nil {
		return v, err
	}
	if c.rank != root {
		return recvAs[T](ctx, c, root, tagBcast)
	}
	for r := range c.Size() {
		if r == root {
			continue
		}
		if err := c.Send(ctx, r, tagBcast, v); err != nil {
			return v, err
		}
	}
	return v, nil
}

func checkTable(c *Comm, counts, displs []int, n int) error {
	if len(counts) != c.Size() || len(displs) != c.Size() {
		return fmt.Errorf("%w: %d counts and %d displacements for %d ranks",
			ErrCount, len(counts), len(displs), c.Size())
	}
	for r := range counts {
		if counts[r] < 0 || displs[r] < 0 || displs[r]+counts[r] > n {
			return fmt.Errorf("%w: rank %d [%d,+%d) outside buffer of %d",
				ErrCount, r, displs[r], counts[r], n)
		}
	}
	return nil
}

// Scatterv distributes send[displs[r] : displs[r]+counts[r]] from root to
// every rank r, which receives its own copy. counts and displs are only
// read on the root; chunks may overlap (halos).
func Scatterv[T any](ctx context.Context, c *Comm, root int, send []T, counts, displs []int) ([]T, error) {
	if err := c.checkRank(root); err != nil {
		return nil, err
	}
	if c.rank != root {
		return recvAs[[]T](ctx, c, root, tagScatter)
	}
	if err := checkTable(c, counts, displs, len(send)); err != nil {
		return nil, err
	}
	for r := range c.Size() {
		if r == root {
			continue
		}
		chunk := slices.Clone(send[displs[r] : displs[r]+counts[r]])
		if err := c.Send(ctx, r, tagScatter, chunk); err != nil {
			return nil, err
		}
	}
	return slices.Clone(send[displs[root] : displs[root]+counts[root]]), nil
}

// Gatherv collects local from every rank r into recv[displs[r]:] on root.
// counts and displs are only read on the root, where len(local) of each
// rank must equal counts[r]. recv is ignored on non-root ranks.
func Gatherv[T any](ctx context.Context, c *Comm, root int, local []T, counts, displs []int, recv []T) error {
	if err := c.checkRank(root); err != nil {
		return err
	}
	if c.rank != root {
		return c.Send(ctx, root, tagGather, slices.Clone(local))
	}
	if err := checkTable(c, counts, displs, len(recv)); err != nil {
		return err
	}
	for r := range c.Size() {
		chunk := local
		if r != root {
			var err error
			chunk, err = recvAs[[]T](ctx, c, r, tagGather)
			if err != nil {
				return err
			}
		}
		if len(chunk) != counts[r] {
			return fmt.Errorf("%w: rank %d sent %d elements, want %d", ErrCount, r, len(chunk), counts[r])
		}
		copy(recv[displs[r]:], chunk)
	}
	return nil
}

// Gather collects one value per rank on root, indexed by rank. Non-root
// ranks get nil.
func Gather[T any](ctx context.Context, c *Comm, root int, v T) ([]T, error) {
	if err := c.checkRank(root); err != nil {
		return nil, err
	}
	if c.rank != root {
		return nil, c.Send(ctx, root, tagGather, v)
	}
	out := make([]T, c.Size())
	for r := range c.Size() {
		if r == root {
			out[r] = v
			continue
		}
		got, err := recvAs[T](ctx, c, r, tagGather)
		if err != nil {
			return nil, err
		}
		out[r] = got
	}
	return out, nil
}

// Allreduce combines the value of every rank with op, in rank order, and
// returns the result on all ranks.
func Allreduce[T any](ctx context.Context, c *Comm, v T, op func(a, b T) T) (T, error) {
	all, err := Gather(ctx, c, 0, v)
	if err != nil {
		return v, err
	}
	var acc T
	if c.rank == 0 {
		acc = all[0]
		for _, x := range all[1:] {
			acc = op(acc, x)
		}
	}
	return Bcast(ctx, c, 0, acc)
}

type splitRequest struct {
	color, key int
}

type splitAssignment struct {
	ids     map[int]uint64 // color -> communicator id
	members map[int][]int  // color -> world ranks ordered by (key, old rank)
}

// Split partitions the communicator into subgroups, one per distinct color.
// Ranks of a subgroup are ordered by key, ties broken by their old rank.
// Ranks passing Undefined get a nil communicator.
func (c *Comm) Split(ctx context.Context, color, key int) (*Comm, error) {
	reqs, err := Gather(ctx, c, 0, splitRequest{color: color, key: key})
	if err != nil {
		return nil, err
	}

	var assign splitAssignment
	if c.rank == 0 {
		assign = splitAssignment{ids: map[int]uint64{}, members: map[int][]int{}}
		byColor := map[int][]int{}
		for r, req := range reqs {
			if req.color == Undefined {
				continue
			}
			byColor[req.color] = append(byColor[req.color], r)
		}
		colors := make([]int, 0, len(byColor))
		for col := range byColor {
			colors = append(colors, col)
		}
		sort.Ints(colors)
		for _, col := range colors {
			ranks := byColor[col]
			sort.SliceStable(ranks, func(i, j int) bool {
				return reqs[ranks[i]].key < reqs[ranks[j]].key
			})
			world := make([]int, len(ranks))
			for i, r := range ranks {
				world[i] = c.members[r]
			}
			assign.ids[col] = c.world.nextID.Add(1)
			assign.members[col] = world
		}
	}
	assign, err = Bcast(ctx, c, 0, assign)
	if err != nil {
		return nil, err
	}
	if color == Undefined {
		return nil, nil
	}

	members := assign.members[color]
	me := c.members[c.rank]
	for i, w := range members {
		if w == me {
			return &Comm{world: c.world, id: assign.ids[color], rank: i, members: members}, nil
		}
	}
	return nil, fmt.Errorf("%w: rank %d missing from split color %d", ErrRank, c.rank, color)
}
