package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/pocketcasts"
)

var listCmd = &cobra.Command{
	Use:   "list <" + strings.Join(listNames(), "|") + ">",
	Short: "Fetch one of your episode lists",
	Long: `Fetch one of your Pocket Casts episode lists and store every episode in
the local library.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: listNames(),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		list, err := pocketcasts.ParseList(args[0])
		if err != nil {
			return err
		}

		eps, err := a.episodes.Sync(cmd.Context(), list)
		if err != nil {
			return err
		}
		if len(eps) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is empty\n", list)
			return nil
		}
		printEpisodeTable(cmd.OutOrStdout(), eps)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listNames() []string {
	return lo.Map(pocketcasts.Lists(), func(l pocketcasts.List, _ int) string { return string(l) })
}
