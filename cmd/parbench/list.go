// Copyright 2025 go-par Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-par/par/contrib/integrate"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the kernels accepted by run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KERNEL\tSIZE\tDESCRIPTION")
			for _, k := range kernels {
				fmt.Fprintf(w, "%s\t%d\t%s\n", k.name, k.size, k.desc)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nsimpson integrands: %s\nmidpoint integrands: %s\n",
				strings.Join(integrate.Names(), ", "), strings.Join(integrate.Names2(), ", "))
			return err
		},
	}
}
