// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/models"
)

// newDeactivateCommand asks the running server to deactivate. Scheduled
// jobs and transients live in the server process, so this goes over HTTP.
func newDeactivateCommand(ctx *commandContext) *cobra.Command {
	var conn serverFlags

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Clear the server's scheduled jobs and cached transients",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := conn.client(ctx)
			if err != nil {
				return err
			}

			var result models.DeactivateResponse
			if err := client.callJSON(cmd.Context(), "deactivate", http.MethodPost, "/admin/deactivate", &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.ClearedJobs) == 0 {
				fmt.Fprintln(out, "No scheduled jobs were running")
			} else {
				fmt.Fprintf(out, "Cleared jobs: %s\n", strings.Join(result.ClearedJobs, ", "))
			}
			fmt.Fprintf(out, "Cleared transients: %d\n", result.ClearedTransients)
			return nil
		},
	}

	conn.register(cmd, "Server base URL (default http://localhost:PORT)")
	return cmd
}
