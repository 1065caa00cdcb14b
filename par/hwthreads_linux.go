// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

//go:build linux

package par

import "golang.org/x/sys/unix"

// availableCPUs counts the CPUs in the scheduler affinity mask, which is
// smaller than runtime.NumCPU inside cpusets and containers pinned by taskset.
func availableCPUs() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err != nil {
		return 0
	}
	return set.Count()
}
