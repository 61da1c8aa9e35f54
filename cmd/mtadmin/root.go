// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "mtadmin",
		Short:         "Mobility Trailblazers administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFile, "config", "c", "", "TOML config file")
	flags.StringVarP(&ctx.databaseURL, "database", "d", "", "Database URL (overrides DATABASE_URL)")
	flags.StringVarP(&ctx.databaseType, "type", "t", "", "Database type, sqlite or postgres")
	flags.StringVar(&ctx.envFile, "env-file", ".env", "dotenv file to load if present")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newUsersCommand(ctx))
	rootCmd.AddCommand(newRolesCommand())
	rootCmd.AddCommand(newAssignCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newBackupsCommand(ctx))
	rootCmd.AddCommand(newDeactivateCommand(ctx))

	return rootCmd, ctx
}
