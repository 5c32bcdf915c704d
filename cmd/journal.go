package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/database"
	"github.com/killallgit/castsync/internal/services/episodes"
	"github.com/killallgit/castsync/pkg/config"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Show recorded episode actions",
	Long: `Show the episode actions recorded in the local library, newest first.

Failed attempts are listed with the error Pocket Casts returned.`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().String("episode", "", "only show actions for this episode")
	journalCmd.Flags().Int("limit", 20, "number of entries to show")
}

// runJournal reads only the library, so it works without a token
func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.Database.Path, cfg.Database.Verbose)
	if err != nil {
		return fmt.Errorf("opening library: %w", err)
	}
	defer db.Close()

	episode, _ := cmd.Flags().GetString("episode")
	limit, _ := cmd.Flags().GetInt("limit")

	actions, err := episodes.NewRepository(db.DB).ListActions(cmd.Context(), episode, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(actions) == 0 {
		fmt.Fprintln(out, "No actions recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tEPISODE\tACTION\tRESULT")
	for _, a := range actions {
		action := a.Action
		if a.Position != nil {
			action = fmt.Sprintf("%s %s", action, formatSeconds(*a.Position))
		}
		result := "ok"
		if !a.Succeeded {
			result = "failed: " + a.Error
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.CreatedAt.Local().Format(time.DateTime), a.EpisodeUUID, action, result)
	}
	return w.Flush()
}
