package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user's profile",
	RunE:  runWhoami,
}

var (
	passwdCurrent string
	passwdNew     string
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your own password",
	RunE:  runPasswd,
}

func init() {
	passwdCmd.Flags().StringVar(&passwdCurrent, "current", "",
		"current password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&passwdNew, "new", "",
		"new password (prompted when omitted)")

	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwdCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	if !a.Session.Authenticated() {
		return fmt.Errorf("not signed in (run 'authadm login')")
	}

	// Refresh against the server; a rejected token logs the session out.
	if err := a.Session.LoadProfile(ctx); err != nil {
		return fmt.Errorf("session is no longer valid: %s", friendlyError(err))
	}

	user := a.Session.User()

	fmt.Printf("ID:        %d\n", user.ID)
	fmt.Printf("Email:     %s\n", user.Email)
	fmt.Printf("Name:      %s\n", stringOrDash(user.FullName))
	fmt.Printf("Role:      %s\n", user.Role)
	fmt.Printf("Status:    %s\n", user.Status)
	fmt.Printf("Platform:  %s (%s)\n", user.Platform.Name, user.Platform.Code)

	return nil
}

func runPasswd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()

	current := passwdCurrent
	if current == "" {
		current, err = promptLine("Current password: ")
		if err != nil {
			return err
		}
	}

	next := passwdNew
	if next == "" {
		next, err = promptLine("New password: ")
		if err != nil {
			return err
		}
	}

	if err := a.Auth.ChangePassword(ctx, current, next); err != nil {
		return fmt.Errorf("%s", friendlyError(err))
	}

	log.Info("Password changed")

	return nil
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}

	return *s
}
