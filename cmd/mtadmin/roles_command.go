// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/roles"
)

func newRolesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roles [ROLE]",
		Short: "List roles, or the capabilities of one role",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				role, ok := roles.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown role %q", args[0])
				}
				caps := make([]string, 0, len(role.Capabilities))
				for c, granted := range role.Capabilities {
					if granted {
						caps = append(caps, c)
					}
				}
				sort.Strings(caps)

				rows := make([][]string, len(caps))
				for i, c := range caps {
					rows[i] = []string{c}
				}
				fmt.Fprintln(out, renderTable([]string{role.Label}, rows, nil))
				return nil
			}

			defs := roles.Definitions()
			rows := make([][]string, 0, len(defs))
			for _, r := range defs {
				rows = append(rows, []string{r.Name, r.Label, strconv.Itoa(len(r.Capabilities))})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Role", "Label", "Capabilities"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
