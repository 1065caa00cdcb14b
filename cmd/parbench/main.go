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

// Command parbench runs the bundled kernels as lifecycle tasks on any
// backend and reports their timings.
//
// Usage:
//
//	parbench list
//	parbench run sort --size 1000000 --strategy radix --merge odd-even
//	parbench run matmul-dense --backend distributed --ranks 4 --size 512
//	PAR_BACKEND=sequential parbench run convolve --runs 10 --mode pipeline
//
// Backend flags override the PAR_BACKEND, PAR_MAX_PARALLELISM, PAR_RANKS and
// PAR_LOG_LEVEL environment variables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
