// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/trailblazers/auth"
	"github.com/danielhkuo/trailblazers/i18n"
	"github.com/danielhkuo/trailblazers/roles"
	"github.com/danielhkuo/trailblazers/store"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	usersCmd.AddCommand(newUsersAddCommand(ctx))
	usersCmd.AddCommand(newUsersListCommand(ctx))

	return usersCmd
}

func newUsersAddCommand(ctx *commandContext) *cobra.Command {
	var role string
	var displayName string

	cmd := &cobra.Command{
		Use:   "add LOGIN",
		Short: "Create a user and print its API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			login := i18n.Normalize(args[0])
			if login == "" {
				return errors.New("login is required")
			}
			if !roles.Valid(role) {
				return fmt.Errorf("unknown role %q (see `mtadmin roles`)", role)
			}

			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()

			name := i18n.Normalize(displayName)
			if name == "" {
				name = login
			}
			user, err := st.CreateUser(cmd.Context(), login, name, role)
			if errors.Is(err, store.ErrDuplicate) {
				return fmt.Errorf("login %q is already taken", login)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created user %d (%s, %s)\n", user.ID, user.Login, user.Role)
			fmt.Fprintf(out, "User key: %s\n", auth.GenerateUserKey(user.ID, cfg.UserKeySalt))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", roles.JuryMember, "Role name")
	cmd.Flags().StringVar(&displayName, "name", "", "Display name (defaults to the login)")
	return cmd
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users")
				return nil
			}

			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10),
					u.Login,
					u.DisplayName,
					u.Role,
					humanize.Time(u.CreatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Login", "Name", "Role", "Created"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}
}
