// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package par

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var logger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Str("pkg", "par").Logger()
	logger.Store(&l)
}

// Logger returns the package logger. Drivers log state transitions at debug
// level and tasks log failures at warn level.
func Logger() *zerolog.Logger {
	return logger.Load()
}

// SetLogger replaces the package logger.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

// ConfigureLogging installs a logger writing to w at the given level name
// ("debug", "info", "warn", "error", "disabled"). An empty level keeps warn.
func ConfigureLogging(w io.Writer, level string) error {
	lvl := zerolog.WarnLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	SetLogger(zerolog.New(w).Level(lvl).With().Timestamp().Str("pkg", "par").Logger())
	return nil
}
