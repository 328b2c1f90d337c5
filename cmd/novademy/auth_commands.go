package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCommands(app func() *app) []*cobra.Command {
	return []*cobra.Command{
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newVerifyCommand(app),
	}
}

func newLoginCommand(app func() *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app().auth.Login(cmd.Context(), username, password); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the local session (best-effort server notification)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(app func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app().auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s %s (@%s) <%s>\n", user.FirstName, user.LastName, user.Username, user.Email)
			return nil
		},
	}
}

func newVerifyCommand(app func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <userId> <code>",
		Short: "Submit the 4-digit email verification code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app().auth.VerifyEmail(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Email verified.")
			return nil
		},
	}
	return cmd
}
