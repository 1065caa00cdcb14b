// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-par/par"
	"github.com/ajroetker/go-par/par/task"
)

// Run modes, after task.RunType.
const (
	modeTask     = "task"
	modePipeline = "pipeline"
)

func newRunCmd(backend *backendFlags) *cobra.Command {
	var (
		w    workload
		runs int
		mode string
	)
	cmd := &cobra.Command{
		Use:   "run <kernel>",
		Short: "Run a kernel as a task and print its timings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := findKernel(args[0])
			if err != nil {
				return err
			}
			if mode != modeTask && mode != modePipeline {
				return fmt.Errorf("unknown mode %q, want %q or %q", mode, modeTask, modePipeline)
			}
			if !cmd.Flags().Changed("size") {
				w.size = k.size
			}

			cfg, err := backend.config(cmd.Flags())
			if err != nil {
				return err
			}
			if err := consoleLogging(cmd.ErrOrStderr(), &cfg); err != nil {
				return err
			}
			d, closeFn, err := par.NewDriver(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			t, err := k.build(w, d)
			if err != nil {
				return err
			}
			if base, ok := t.(interface{ SetContext(ctx context.Context) }); ok {
				base.SetContext(cmd.Context())
			}

			perf := task.Perf{Runs: runs}
			var res task.Results
			if mode == modePipeline {
				res, err = perf.PipelineRun(t)
			} else {
				res, err = perf.TaskRun(t)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KERNEL\tBACKEND\tPARALLELISM\tSIZE\tTYPE\tRUNS\tTOTAL\tAVERAGE")
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%d\t%v\t%v\n",
				k.name, d.Name(), d.Parallelism(), w.size, res.Type, res.Runs, res.TotalTime, res.AverageTime)
			return tw.Flush()
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&w.size, "size", 0, "problem size, see parbench list for its meaning and default")
	fs.Int64Var(&w.seed, "seed", 1, "seed of the random inputs")
	fs.StringVar(&w.strategy, "strategy", "quick", "sort strategy: quick, shell, shell-pow2 or radix")
	fs.StringVar(&w.merge, "merge", "tree", "sort merge network: tree or odd-even")
	fs.StringVar(&w.fn, "func", "", "integrand name, see parbench list")
	fs.IntVar(&runs, "runs", 5, "repetitions")
	fs.StringVar(&mode, "mode", modeTask, "task: time Run only; pipeline: time all four phases")
	return cmd
}
