package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/pkg/config"
	"github.com/killallgit/castsync/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "castsync",
	Short: "Pocket Casts from the command line",
	Long: `castsync - work with a Pocket Casts account from the command line

Inspect episodes and podcasts, update playback state, manage stars, archive
and Up Next, download audio, and keep a local library of everything seen.

Features:
  • Episode actions (played, progress, star, archive, play next/last)
  • User lists (new releases, in progress, starred, history, up next)
  • Local SQLite library with an action journal
  • Local HTTP bridge for other tools (castsync serve)`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd returns the root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides logging.level")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// setup loads configuration and the logger before any command runs.
// version and help need neither.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	if err := config.Init(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	level := config.GetString("logging.level")
	if flag, _ := cmd.Flags().GetString("log-level"); flag != "" {
		level = flag
	}
	format := config.GetString("logging.format")
	if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
		format = "json"
	}

	if err := logging.Setup(level, format, cmd.ErrOrStderr()); err != nil {
		return err
	}
	logrus.WithField("command", cmd.CommandPath()).Debug("starting")
	return nil
}
