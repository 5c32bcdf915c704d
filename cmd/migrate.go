package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/database"
	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/pkg/config"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the local library schema",
	Long: `Manage the schema of the local episode library.

Every command that opens the library migrates it first, so running these by
hand is only needed to prepare or inspect a library file.

Available subcommands:
  up      - Create or update all library tables
  status  - Show the library tables and row counts`,
}

// migrateUpCmd applies the schema
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Create or update all library tables",
	Args:  cobra.NoArgs,
	RunE:  runMigrateUp,
}

// migrateStatusCmd shows the schema state
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library tables and row counts",
	Args:  cobra.NoArgs,
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateUpCmd.Flags().Bool("dry-run", false, "show what would be migrated without making changes")
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		fmt.Fprintf(out, "Would migrate %s:\n", cfg.Database.Path)
		for _, name := range tableNames() {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Library %s is up to date\n", cfg.Database.Path)
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	db, err := database.Initialize(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Library %s\n", cfg.Database.Path)
	fmt.Fprintln(out, strings.Repeat("=", 50))

	migrator := db.DB.Migrator()
	pending := 0
	for _, model := range models.All() {
		stmt := db.DB.Model(model).Statement
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parsing model: %w", err)
		}
		table := stmt.Schema.Table

		if !migrator.HasTable(model) {
			pending++
			fmt.Fprintf(out, "  %-20s missing\n", table)
			continue
		}

		var count int64
		if err := db.DB.Model(model).Count(&count).Error; err != nil {
			return fmt.Errorf("counting %s: %w", table, err)
		}
		fmt.Fprintf(out, "  %-20s %d rows\n", table, count)
	}

	if pending > 0 {
		fmt.Fprintf(out, "\n%d table(s) missing, run `castsync migrate up`\n", pending)
	}
	return nil
}

func tableNames() []string {
	names := make([]string, 0, len(models.All()))
	for _, model := range models.All() {
		names = append(names, fmt.Sprintf("%T", model))
	}
	return names
}
