// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/export"
	"github.com/danielhkuo/trailblazers/i18n"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export data as CSV",
	}
	exportCmd.AddCommand(newExportAssignmentsCommand(ctx))
	return exportCmd
}

func newExportAssignmentsCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var output string

	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "Write the assignment list as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := st.AssignmentRows(cmd.Context())
			if err != nil {
				return err
			}

			if output == "" {
				output = export.AssignmentsFilename(time.Now())
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := export.WriteAssignmentsCSV(w, rows, i18n.New(i18n.Match(lang))); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(rows), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "Header language (en or de)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default assignments-DATE.csv)")
	return cmd
}
