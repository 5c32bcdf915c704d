package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/services/auth"
	"github.com/killallgit/castsync/pkg/config"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Pocket Casts and store the token",
	Long: `Log in to Pocket Casts with an email and password and store the returned
token in the system keyring.

The password can be given with --password or the CASTSYNC_POCKETCASTS_PASSWORD
environment variable.

Example:
  castsync login --email me@example.com`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Pocket Casts token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().String("email", "", "Pocket Casts account email (overrides pocketcasts.email)")
	loginCmd.Flags().String("password", "", "Pocket Casts account password (overrides pocketcasts.password)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		email = cfg.PocketCasts.Email
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = cfg.PocketCasts.Password
	}
	if email == "" || password == "" {
		return errors.New("email and password are required")
	}

	client := newClient(cfg, nil)
	token, err := client.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	if err := tokenStore(cfg).Save(token); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged in as %s\n", email)
	if info, err := auth.Inspect(token); err == nil && !info.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Token expires %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if err := tokenStore(cfg).Delete(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}
