// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/assign"
	"github.com/danielhkuo/trailblazers/handlers"
	"github.com/danielhkuo/trailblazers/models"
)

func newAssignCommand(ctx *commandContext) *cobra.Command {
	assignCmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign candidates to jury members",
	}
	assignCmd.AddCommand(newAssignAutoCommand(ctx))
	return assignCmd
}

func newAssignAutoCommand(ctx *commandContext) *cobra.Command {
	var perJury int
	var algorithm string
	var clearExisting bool
	var conn serverFlags

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Deal unassigned candidates to jury members round robin",
		Long: `Deal unassigned candidates to jury members round robin.

Without --server the assignments are written to the database directly and a
running server keeps its cached assignment statistics until they expire.
With --server the deal runs inside that server, which refreshes its cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			label, err := assign.ValidateAlgorithm(algorithm)
			if err != nil {
				return err
			}

			var res models.AutoAssignResult
			if conn.server != "" {
				res, err = autoAssignRemote(cmd, ctx, &conn, perJury, label, clearExisting)
			} else {
				res, err = autoAssignLocal(cmd, ctx, perJury, label, clearExisting)
			}
			if err != nil {
				return err
			}

			juryIDs := make([]int64, 0, len(res.Assignments))
			for id := range res.Assignments {
				juryIDs = append(juryIDs, id)
			}
			sort.Slice(juryIDs, func(a, b int) bool { return juryIDs[a] < juryIDs[b] })

			rows := make([][]string, 0, len(juryIDs))
			for _, id := range juryIDs {
				rows = append(rows, []string{strconv.FormatInt(id, 10), strconv.Itoa(res.Assignments[id])})
			}

			out := cmd.OutOrStdout()
			if clearExisting {
				fmt.Fprintf(out, "Cleared %d existing assignments\n", res.Cleared)
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Jury member", "Assigned"},
				rows,
				[]columnAlignment{alignRight, alignRight},
			))
			fmt.Fprintf(out, "Assigned %d candidates (%s)\n", res.TotalAssigned, res.Algorithm)
			return nil
		},
	}

	cmd.Flags().IntVar(&perJury, "per-jury", 10, "Maximum candidates dealt to each jury member")
	cmd.Flags().StringVar(&algorithm, "algorithm", assign.AlgorithmBalanced, "Algorithm label")
	cmd.Flags().BoolVar(&clearExisting, "clear", false, "Clear existing assignments first")
	conn.register(cmd, "Run the assignment through this server instead of the database")
	return cmd
}

func autoAssignLocal(cmd *cobra.Command, ctx *commandContext, perJury int, label string, clearExisting bool) (models.AutoAssignResult, error) {
	st, err := ctx.openStore(cmd.Context())
	if err != nil {
		return models.AutoAssignResult{}, err
	}

	res, err := assign.Auto(cmd.Context(), st, perJury, clearExisting, time.Now())
	if err != nil {
		return models.AutoAssignResult{}, err
	}
	return models.AutoAssignResult{
		Assignments:   res.PerJury,
		TotalAssigned: res.TotalAssigned,
		Algorithm:     label,
		Cleared:       res.Cleared,
	}, nil
}

func autoAssignRemote(cmd *cobra.Command, ctx *commandContext, conn *serverFlags, perJury int, label string, clearExisting bool) (models.AutoAssignResult, error) {
	var res models.AutoAssignResult

	client, err := conn.client(ctx)
	if err != nil {
		return res, err
	}

	form := url.Values{}
	form.Set("candidates_per_jury", strconv.Itoa(perJury))
	form.Set("algorithm", label)
	form.Set("clear_existing", strconv.FormatBool(clearExisting))

	err = client.ajax(cmd.Context(), "mt_auto_assign", handlers.NonceAction, form, &res)
	return res, err
}
