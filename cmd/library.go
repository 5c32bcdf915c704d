package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/database"
	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/services/episodes"
	"github.com/killallgit/castsync/pkg/config"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Show episodes stored in the local library",
	Long: `Show the episode snapshots kept in the local library, newest first.

The library is filled by fetches, list syncs and the serve command's
background sync, and is read without contacting Pocket Casts.`,
	Args: cobra.NoArgs,
	RunE: runLibrary,
}

func init() {
	rootCmd.AddCommand(libraryCmd)

	libraryCmd.Flags().String("podcast", "", "only show episodes of this podcast")
	libraryCmd.Flags().Int("limit", 20, "number of episodes to show")
}

// runLibrary reads only the library, so it works without a token
func runLibrary(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer db.Close()

	podcast, _ := cmd.Flags().GetString("podcast")
	limit, _ := cmd.Flags().GetInt("limit")

	svc := episodes.NewService(newClient(cfg, nil), episodes.NewRepository(db.DB))
	stored, err := svc.Snapshots(cmd.Context(), podcast, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(stored) == 0 {
		fmt.Fprintln(out, "Library is empty")
		return nil
	}

	list := make([]*models.Episode, len(stored))
	for i := range stored {
		list[i] = &stored[i]
	}
	printEpisodeTable(out, list)
	return nil
}
