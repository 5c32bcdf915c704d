package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/services/cache"
	"github.com/killallgit/castsync/internal/services/episodes"
	"github.com/killallgit/castsync/pkg/config"
)

var podcastCmd = &cobra.Command{
	Use:   "podcast",
	Short: "Look up podcasts in the Pocket Casts catalogue",
}

var podcastShowCmd = &cobra.Command{
	Use:   "show <uuid>",
	Short: "Show a podcast",
	Args:  cobra.ExactArgs(1),
	RunE: withCatalogue(func(cmd *cobra.Command, client *pocketcasts.Client, args []string) error {
		p, err := client.GetPodcastByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		eps, err := p.Episodes(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "UUID:\t%s\n", p.ID())
		fmt.Fprintf(w, "Title:\t%s\n", p.Title())
		fmt.Fprintf(w, "Author:\t%s\n", p.Author())
		fmt.Fprintf(w, "Website:\t%s\n", p.URL())
		fmt.Fprintf(w, "Episodes:\t%d\n", len(eps))
		if p.Description() != "" {
			fmt.Fprintf(w, "\n%s\n", p.Description())
		}
		return w.Flush()
	}),
}

var podcastEpisodesCmd = &cobra.Command{
	Use:   "episodes <uuid>",
	Short: "List the episodes of a podcast",
	Args:  cobra.ExactArgs(1),
	RunE: withCatalogue(func(cmd *cobra.Command, client *pocketcasts.Client, args []string) error {
		p, err := client.GetPodcastByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		eps, err := p.Episodes(cmd.Context())
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		if limit > 0 && len(eps) > limit {
			eps = eps[:limit]
		}

		transformer := episodes.NewTransformer()
		printEpisodeTable(cmd.OutOrStdout(), lo.Map(eps, func(e *pocketcasts.Episode, _ int) *models.Episode {
			return transformer.ToSnapshot(e)
		}))
		return nil
	}),
}

var podcastListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the podcasts you follow",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		podcasts, err := a.client.Subscriptions(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "UUID\tTITLE\tAUTHOR")
		for _, p := range podcasts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID(), p.Title(), p.Author())
		}
		return w.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(podcastCmd)
	podcastCmd.AddCommand(podcastShowCmd, podcastEpisodesCmd, podcastListCmd)

	podcastEpisodesCmd.Flags().Int("limit", 0, "show at most this many episodes (0 = all)")
}

// withCatalogue runs a command against the public catalogue. A stored token
// is attached when present but not required.
func withCatalogue(run func(cmd *cobra.Command, client *pocketcasts.Client, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}

		mc := cache.NewMemoryCache(cfg.Cache.MaxEntries, cfg.Cache.CleanupInterval)
		defer mc.Stop()

		client := newClient(cfg, mc)
		if token, err := resolveToken(cfg); err == nil {
			client.SetToken(token)
		}
		return run(cmd, client, args)
	}
}
