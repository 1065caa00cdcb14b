// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

//go:build !linux

package par

// availableCPUs has no affinity information outside Linux; HardwareThreads
// falls back to runtime.NumCPU.
func availableCPUs() int {
	return 0
}
