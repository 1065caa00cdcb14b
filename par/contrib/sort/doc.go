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

// Package sort provides a parallel partition-sort-merge task over int32
// values.
//
// The input is partitioned into one range per unit of driver parallelism.
// Every range is sorted independently with the selected Strategy, and the
// sorted runs are combined by a merge network once every range is done.
//
// # Strategies
//
//   - Quick: introsort with a sampled pivot, 3-way partitioning, insertion
//     sort for small slices and a heapsort fallback. The two halves of each
//     partition are forked on a bounded forkjoin.Pool.
//   - Shell: Shell sort with the halving gap sequence.
//   - ShellPow2: Shell sort over a power-of-two number of equal runs. The
//     input length must be a power of two; Validation rejects other lengths.
//   - Radix: LSD radix sort, one byte per pass, with the sign bit flipped so
//     negative values order first.
//
// # Example Usage
//
//	data := &task.Data{
//	    Inputs:  []task.Buffer{task.NewBuffer("in", values)},
//	    Outputs: []task.Buffer{task.Alloc("out", task.KindInt32, len(values))},
//	}
//	t := sort.NewTask(data, driver, sort.Options{Strategy: sort.Radix})
//	if err := task.Pipeline(t); err != nil {
//	    ...
//	}
package sort
