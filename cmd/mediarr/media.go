package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var mediaCmd = &cobra.Command{
	Use:   "media <id>",
	Short: "Show a media item with its seasons and requests",
	Args:  cobra.ExactArgs(1),
	RunE:  runMediaCmd,
}

func init() {
	rootCmd.AddCommand(mediaCmd)
}

func runMediaCmd(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	m, err := newClient().Media(id)
	if err != nil {
		return fmt.Errorf("media fetch failed: %w", err)
	}
	if jsonOutput {
		printJSON(m)
		return nil
	}
	printMedia(os.Stdout, m)
	return nil
}

func printMedia(w io.Writer, m *MediaResponse) {
	fmt.Fprintf(w, "Media %d (%s, tmdb %d)\n", m.ID, m.Type, m.TMDBID)
	if m.TVDBID != nil {
		fmt.Fprintf(w, "  tvdb:     %d\n", *m.TVDBID)
	}
	if m.IMDBID != nil {
		fmt.Fprintf(w, "  imdb:     %s\n", *m.IMDBID)
	}
	fmt.Fprintf(w, "  standard: %s\n", tierLine(m.Standard))
	fmt.Fprintf(w, "  4k:       %s\n", tierLine(m.FourK))
	if m.MediaAddedAt != nil {
		fmt.Fprintf(w, "  added:    %s\n", humanize.Time(*m.MediaAddedAt))
	}
	fmt.Fprintf(w, "  updated:  %s\n", humanize.Time(m.UpdatedAt))

	if len(m.Seasons) > 0 {
		fmt.Fprintf(w, "\n  %-8s %-22s %s\n", "SEASON", "STANDARD", "4K")
		fmt.Fprintln(w, "  "+strings.Repeat("-", 54))
		for _, s := range m.Seasons {
			fmt.Fprintf(w, "  %-8d %-22s %s\n", s.SeasonNumber, s.Status, s.Status4K)
		}
	}

	if len(m.Requests) == 0 {
		fmt.Fprintln(w, "\n  No requests")
		return
	}
	fmt.Fprintf(w, "\n  Requests (%s):\n", humanize.Comma(int64(len(m.Requests))))
	for _, r := range m.Requests {
		tier := "standard"
		if r.Is4K {
			tier = "4k"
		}
		fmt.Fprintf(w, "  %-6d %-10s %-9s user %-5d %s\n", r.ID, tier, r.Status, r.RequestedByID, humanize.Time(r.CreatedAt))
	}
}

func tierLine(t TierResponse) string {
	var parts []string
	parts = append(parts, t.Status)
	if t.ServiceID != nil {
		parts = append(parts, fmt.Sprintf("instance %d", *t.ServiceID))
	}
	if t.ExternalServiceSlug != nil {
		parts = append(parts, *t.ExternalServiceSlug)
	}
	if t.RatingKey != nil {
		parts = append(parts, "plex "+*t.RatingKey)
	}
	return strings.Join(parts, ", ")
}
