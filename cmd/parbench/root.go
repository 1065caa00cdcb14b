// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-par/par"
)

// backendFlags mirror the fields of par.Config.
type backendFlags struct {
	backend     string
	parallelism int
	ranks       int
	logLevel    string
}

func (f *backendFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "backend", "", "backend: sequential, shared or distributed (default from PAR_BACKEND, else shared)")
	fs.IntVar(&f.parallelism, "parallelism", 0, "workers of the shared backend, or per rank of the distributed one; 0 uses every hardware thread")
	fs.IntVar(&f.ranks, "ranks", 0, "ranks of the distributed backend")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error or disabled")
}

// config returns the environment configuration with the flags set on fs
// applied on top.
func (f *backendFlags) config(fs *pflag.FlagSet) (par.Config, error) {
	cfg, err := par.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	if fs.Changed("backend") {
		cfg.Backend = f.backend
	}
	if fs.Changed("parallelism") {
		cfg.MaxParallelism = f.parallelism
	}
	if fs.Changed("ranks") {
		cfg.Ranks = f.ranks
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	return cfg, cfg.Validate()
}

// consoleLogging installs a human readable logger on w. The level is taken
// from cfg, which is cleared so that par.NewDriver keeps this logger.
func consoleLogging(w io.Writer, cfg *par.Config) error {
	lvl := zerolog.WarnLevel
	if cfg.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		lvl = parsed
	}
	cfg.LogLevel = ""
	par.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(lvl).With().Timestamp().Str("pkg", "par").Logger())
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parbench",
		Short:         "Run parallel kernels on any backend and time them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := &backendFlags{}
	flags.register(root.PersistentFlags())
	root.AddCommand(newListCmd(), newRunCmd(flags))
	return root
}
