// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package par

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PAR_BACKEND", " Distributed ")
	t.Setenv("PAR_MAX_PARALLELISM", "3")
	t.Setenv("PAR_RANKS", "4")
	t.Setenv("PAR_LOG_LEVEL", "")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{Backend: BackendDistributed, MaxParallelism: 3, Ranks: 4}, cfg)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("PAR_BACKEND", "")
	t.Setenv("PAR_MAX_PARALLELISM", "")
	t.Setenv("PAR_RANKS", "")
	t.Setenv("PAR_LOG_LEVEL", "")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnvErrors(t *testing.T) {
	t.Setenv("PAR_BACKEND", "")
	t.Setenv("PAR_RANKS", "")
	t.Setenv("PAR_MAX_PARALLELISM", "lots")
	_, err := ConfigFromEnv()
	assert.ErrorContains(t, err, "PAR_MAX_PARALLELISM")

	t.Setenv("PAR_MAX_PARALLELISM", "")
	t.Setenv("PAR_BACKEND", "gpu")
	_, err = ConfigFromEnv()
	assert.ErrorContains(t, err, "unknown backend")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{Backend: BackendShared, MaxParallelism: -1}.Validate())
	assert.Error(t, Config{Backend: BackendDistributed, Ranks: 0}.Validate())
	assert.NoError(t, Config{Backend: BackendSequential, Ranks: 0}.Validate())
}

func TestNewDriver(t *testing.T) {
	tests := []struct {
		cfg         Config
		name        string
		parallelism int
	}{
		{Config{Backend: BackendSequential}, "sequential", 1},
		{Config{Backend: BackendShared, MaxParallelism: 3}, "shared", 3},
		{Config{Backend: BackendDistributed, MaxParallelism: 2, Ranks: 3}, "distributed", 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, closeFn, err := NewDriver(tc.cfg)
			require.NoError(t, err)
			defer closeFn()
			assert.Equal(t, tc.name, d.Name())
			assert.Equal(t, tc.parallelism, d.Parallelism())

			var hits [10]int
			require.NoError(t, d.Dispatch(context.Background(), len(hits), func(ctx context.Context, i int) error {
				hits[i]++
				return nil
			}))
			for i, h := range hits {
				assert.Equal(t, 1, h, "index %d", i)
			}
		})
	}

	_, _, err := NewDriver(Config{Backend: "gpu"})
	assert.Error(t, err)
}

func TestNewDriverLogLevel(t *testing.T) {
	prev := *Logger()
	defer SetLogger(prev)

	_, _, err := NewDriver(Config{Backend: BackendSequential, LogLevel: "chatty"})
	assert.Error(t, err)

	d, closeFn, err := NewDriver(Config{Backend: BackendSequential, LogLevel: "debug"})
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "sequential", d.Name())
	assert.Equal(t, zerolog.DebugLevel, Logger().GetLevel())
}

func TestTransitionsAreLogged(t *testing.T) {
	prev := *Logger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	require.NoError(t, ConfigureLogging(&buf, "debug"))
	_, err := Execute(context.Background(), NewSequential(), Parts(Partition(4, 1)),
		func(ctx context.Context, p Part) (int, error) { return p.Range.Len, nil },
		func(ctx context.Context, parts []int) (int, error) { return parts[0], nil })
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"to":"done"`)
	assert.Contains(t, buf.String(), `"driver":"sequential"`)
}

func TestHardwareThreads(t *testing.T) {
	assert.GreaterOrEqual(t, HardwareThreads(), 1)
}

func TestScratch(t *testing.T) {
	allocs := 0
	s := NewScratch(2, func() []float64 {
		allocs++
		return make([]float64, 8)
	})
	assert.Equal(t, 2, s.Len())
	s.Ensure(1)
	assert.Equal(t, 2, allocs, "Ensure never shrinks nor reallocates")
	s.Ensure(4)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 4, allocs)

	s.Get(3)[0] = 7
	assert.Equal(t, 7.0, s.Get(3)[0])
	s.Set(0, nil)
	assert.Nil(t, s.Get(0))
}

func TestScratchPerWorker(t *testing.T) {
	d := NewShared(4)
	defer d.Close()
	ranges := Partition(1000, d.Parallelism())
	s := NewScratch(len(ranges), func() *int { return new(int) })
	require.NoError(t, d.Dispatch(context.Background(), len(ranges), func(ctx context.Context, i int) error {
		acc := s.Get(i)
		for j := ranges[i].Start; j < ranges[i].End(); j++ {
			*acc += j
		}
		return nil
	}))
	total := 0
	for i := range s.Len() {
		total += *s.Get(i)
	}
	assert.Equal(t, 999*1000/2, total)
}
