package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/adminportal/internal/guard"
	"github.com/me/adminportal/internal/output"
	"github.com/me/adminportal/pkg/model"
)

func newUsersCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts (admin)",
	}
	cmd.AddCommand(
		newUsersListCmd(s),
		newUsersCreateCmd(s),
		newUsersUpdateCmd(s),
		newUsersDeleteCmd(s),
	)
	return cmd
}

func newUsersListCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.UsersPath)
			if err != nil {
				return err
			}
			users, err := a.Users.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, users)
		},
	}
}

func newUsersCreateCmd(s *state) *cobra.Command {
	var req model.CreateUserRequest
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.UsersPath)
			if err != nil {
				return err
			}
			req.Role = model.UserRole(role)
			user, err := a.CreateUser(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create user: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, user)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "Role (admin, user)")
	return cmd
}

func newUsersUpdateCmd(s *state) *cobra.Command {
	var email, password, role string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req model.UpdateUserRequest
			flags := cmd.Flags()
			if flags.Changed("email") {
				req.Email = &email
			}
			if flags.Changed("password") {
				req.Password = &password
			}
			if flags.Changed("role") {
				r := model.UserRole(role)
				req.Role = &r
			}
			if req == (model.UpdateUserRequest{}) {
				return fmt.Errorf("nothing to update: set --email, --password or --role")
			}

			a, err := s.authorize(cmd.Context(), guard.UsersPath)
			if err != nil {
				return err
			}
			user, err := a.UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("update user: %w", explain(err))
			}
			return output.Write(cmd.OutOrStdout(), s.output, user)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&role, "role", "", "New role (admin, user)")
	return cmd
}

func newUsersDeleteCmd(s *state) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := s.authorize(cmd.Context(), guard.UsersPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "Are you sure you want to delete user %s? [y/N] ", args[0])
				answer, _ := readLine(bufio.NewReader(cmd.InOrStdin()))
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Cancelled.")
					return nil
				}
			}
			if err := a.DeleteUser(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete user: %w", explain(err))
			}
			fmt.Fprintf(out, "Deleted user %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
