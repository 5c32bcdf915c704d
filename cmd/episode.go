package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/killallgit/castsync/internal/models"
	"github.com/killallgit/castsync/internal/pocketcasts"
	"github.com/killallgit/castsync/internal/services/episodes"
	"github.com/killallgit/castsync/pkg/download"
)

// partial files older than this are left over from interrupted downloads
const partialMaxAge = 24 * time.Hour

var episodeCmd = &cobra.Command{
	Use:   "episode",
	Short: "Inspect and update a single episode",
	Long: `Inspect and update a single Pocket Casts episode by UUID.

Every update is recorded in the local journal (see castsync journal).`,
}

var episodeShowCmd = &cobra.Command{
	Use:   "show <uuid>",
	Short: "Show the current state of an episode",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		e, err := a.episodes.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printEpisode(cmd.OutOrStdout(), e)
		return nil
	}),
}

var episodeProgressCmd = &cobra.Command{
	Use:   "progress <uuid> <seconds>",
	Short: "Set the playback position of an episode",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		position, err := parsePosition(args[1])
		if err != nil {
			return err
		}
		return applyAction(cmd, a, args[0], episodes.ActionProgress, position)
	}),
}

var episodeShareCmd = &cobra.Command{
	Use:   "share <uuid>",
	Short: "Print the public share link of an episode",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		link, err := a.episodes.ShareLink(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	}),
}

var episodeNotesCmd = &cobra.Command{
	Use:   "notes <uuid>",
	Short: "Print the show notes of an episode",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		notes, err := a.episodes.ShowNotes(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), notes)
		return nil
	}),
}

var episodeDownloadCmd = &cobra.Command{
	Use:   "download <uuid>",
	Short: "Download the audio of an episode",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = a.config.Download.Dir
		}
		if _, err := download.CleanupPartials(dir, partialMaxAge); err != nil {
			logrus.WithError(err).WithField("dir", dir).Warn("failed to clean up partial downloads")
		}

		result, err := a.episodes.Download(cmd.Context(), args[0], a.downloader(), dir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d bytes)\n", result.FilePath, result.MediaType, result.Size)
		return nil
	}),
}

// simple actions take only the episode uuid
var simpleActions = []struct {
	action episodes.Action
	short  string
}{
	{episodes.ActionPlayed, "Mark an episode as played"},
	{episodes.ActionUnplayed, "Mark an episode as unplayed"},
	{episodes.ActionStar, "Star an episode"},
	{episodes.ActionUnstar, "Remove the star from an episode"},
	{episodes.ActionArchive, "Archive an episode"},
	{episodes.ActionUnarchive, "Unarchive an episode"},
	{episodes.ActionPlayNext, "Put an episode at the top of Up Next"},
	{episodes.ActionPlayLast, "Put an episode at the bottom of Up Next"},
}

func init() {
	rootCmd.AddCommand(episodeCmd)
	episodeCmd.AddCommand(episodeShowCmd, episodeProgressCmd, episodeShareCmd, episodeNotesCmd, episodeDownloadCmd)

	for _, sa := range simpleActions {
		action := sa.action
		episodeCmd.AddCommand(&cobra.Command{
			Use:   string(action) + " <uuid>",
			Short: sa.short,
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
				return applyAction(cmd, a, args[0], action, 0)
			}),
		})
	}

	episodeDownloadCmd.Flags().String("dir", "", "target directory (overrides download.dir)")
}

// withApp builds the app for a command and closes it afterwards
func withApp(run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, a, args)
	}
}

func applyAction(cmd *cobra.Command, a *app, uuid string, action episodes.Action, position int) error {
	e, err := a.episodes.Apply(cmd.Context(), uuid, action, position)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", action, e.Title)
	return nil
}

// parsePosition accepts plain seconds or a duration such as 12m30s
func parsePosition(s string) (int, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		return seconds, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: want seconds or a duration like 12m30s", s)
	}
	return int(d / time.Second), nil
}

func printEpisode(out io.Writer, e *models.Episode) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "UUID:\t%s\n", e.UUID)
	fmt.Fprintf(w, "Title:\t%s\n", e.Title)
	fmt.Fprintf(w, "Podcast:\t%s (%s)\n", e.PodcastTitle, e.PodcastUUID)
	if e.Published != nil {
		fmt.Fprintf(w, "Published:\t%s\n", e.Published.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "Duration:\t%s\n", formatSeconds(e.Duration))
	fmt.Fprintf(w, "Position:\t%s\n", formatSeconds(e.PlayedUpTo))
	fmt.Fprintf(w, "Status:\t%s\n", statusName(e.PlayingStatus))
	fmt.Fprintf(w, "Starred:\t%t\n", e.Starred)
	fmt.Fprintf(w, "Archived:\t%t\n", e.Deleted)
	fmt.Fprintf(w, "Audio:\t%s\n", e.URL)
	if e.Stale {
		fmt.Fprintf(w, "Note:\t%s\n", "Pocket Casts unreachable, showing the local library copy")
	}
	w.Flush()
}

func printEpisodeTable(out io.Writer, list []*models.Episode) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "UUID\tPODCAST\tTITLE\tPOSITION\tFLAGS")
	for _, e := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\n", e.UUID, e.PodcastTitle, e.Title,
			formatSeconds(e.PlayedUpTo), formatSeconds(e.Duration), flags(e))
	}
	w.Flush()
}

func flags(e *models.Episode) string {
	var f []string
	if e.Starred {
		f = append(f, "starred")
	}
	if e.Deleted {
		f = append(f, "archived")
	}
	if pocketcasts.PlayingStatus(e.PlayingStatus) == pocketcasts.StatusPlayed {
		f = append(f, "played")
	}
	return strings.Join(f, ",")
}

func statusName(status int) string {
	switch pocketcasts.PlayingStatus(status) {
	case pocketcasts.StatusInProgress:
		return "in progress"
	case pocketcasts.StatusPlayed:
		return "played"
	default:
		return "unplayed"
	}
}

func formatSeconds(s int) string {
	return (time.Duration(s) * time.Second).String()
}
