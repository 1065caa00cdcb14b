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
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Backend names accepted by Config.Backend and PAR_BACKEND.
const (
	BackendSequential  = "sequential"
	BackendShared      = "shared"
	BackendDistributed = "distributed"
)

// Config selects and sizes a Driver.
type Config struct {
	// Backend is one of BackendSequential, BackendShared, BackendDistributed.
	Backend string

	// MaxParallelism bounds the workers of the shared backend, or of each
	// rank of the distributed backend. 0 means HardwareThreads().
	MaxParallelism int

	// Ranks is the process group size of the distributed backend.
	Ranks int

	// LogLevel is a zerolog level name; empty keeps the default (warn).
	LogLevel string
}

// DefaultConfig returns a shared-memory configuration using every hardware
// thread.
func DefaultConfig() Config {
	return Config{
		Backend: BackendShared,
		Ranks:   2,
	}
}

// ConfigFromEnv returns DefaultConfig overridden by the environment:
//
//	PAR_BACKEND          sequential | shared | distributed
//	PAR_MAX_PARALLELISM  integer >= 0
//	PAR_RANKS            integer >= 1
//	PAR_LOG_LEVEL        debug | info | warn | error | disabled
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if val := os.Getenv("PAR_BACKEND"); val != "" {
		cfg.Backend = strings.ToLower(strings.TrimSpace(val))
	}
	if val := os.Getenv("PAR_MAX_PARALLELISM"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("PAR_MAX_PARALLELISM: %w", err)
		}
		cfg.MaxParallelism = n
	}
	if val := os.Getenv("PAR_RANKS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("PAR_RANKS: %w", err)
		}
		cfg.Ranks = n
	}
	if val := os.Getenv("PAR_LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendSequential, BackendShared, BackendDistributed:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MaxParallelism < 0 {
		return fmt.Errorf("max parallelism must be >= 0, got %d", c.MaxParallelism)
	}
	if c.Backend == BackendDistributed && c.Ranks < 1 {
		return fmt.Errorf("distributed backend needs at least 1 rank, got %d", c.Ranks)
	}
	return nil
}

// NewDriver builds the driver described by cfg. The returned close function
// releases the driver's goroutines and is never nil.
func NewDriver(cfg Config) (Driver, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.LogLevel != "" {
		if err := ConfigureLogging(os.Stderr, cfg.LogLevel); err != nil {
			return nil, nil, err
		}
	}
	switch cfg.Backend {
	case BackendSequential:
		return NewSequential(), func() {}, nil
	case BackendDistributed:
		d := NewDistributed(cfg.Ranks, cfg.MaxParallelism)
		return d, d.Close, nil
	default:
		s := NewShared(cfg.MaxParallelism)
		return s, s.Close, nil
	}
}

// HardwareThreads returns the number of hardware threads this process may
// run on, bounded by GOMAXPROCS.
func HardwareThreads() int {
	n := availableCPUs()
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(1, min(n, runtime.GOMAXPROCS(0)))
}
