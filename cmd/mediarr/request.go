package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req"},
	Short:   "Create and moderate media requests",
}

var requestCreateCmd = &cobra.Command{
	Use:   "create <movie|tv> <tmdb-id>",
	Short: "Request a movie or series",
	Args:  cobra.ExactArgs(2),
	RunE:  runRequestCreate,
}

var requestShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		req, err := newClient().Request(id)
		if err != nil {
			return err
		}
		return printRequestResult(req)
	},
}

var requestDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := newClient().DeleteRequest(id); err != nil {
			return fmt.Errorf("delete request: %w", err)
		}
		fmt.Printf("Request %d deleted\n", id)
		return nil
	},
}

// actionCmd builds the approve, decline and retry subcommands.
func actionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req, err := newClient().RequestAction(id, action)
			if err != nil {
				return fmt.Errorf("%s request: %w", action, err)
			}
			return printRequestResult(req)
		},
	}
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.AddCommand(
		requestCreateCmd,
		requestShowCmd,
		actionCmd("approve", "Approve a pending request"),
		actionCmd("decline", "Decline a pending request"),
		actionCmd("retry", "Resubmit an approved request to its download manager"),
		requestDeleteCmd,
	)

	requestCreateCmd.Flags().Bool("4k", false, "Request the 4K tier")
	requestCreateCmd.Flags().String("seasons", "", `Seasons to request: comma-separated numbers or "all" (tv only)`)
	requestCreateCmd.Flags().Int64("tvdb", 0, "TVDB id (tv only)")
	requestCreateCmd.Flags().Int64("server", -1, "Download manager instance id override")
	requestCreateCmd.Flags().Int64("profile", 0, "Quality profile id override")
	requestCreateCmd.Flags().String("root-folder", "", "Root folder override")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// parseSeasons turns the --seasons flag into the request body value.
func parseSeasons(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.EqualFold(s, "all") {
		return "all", nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid season %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func runRequestCreate(cmd *cobra.Command, args []string) error {
	mediaType := strings.ToLower(args[0])
	if mediaType != "movie" && mediaType != "tv" {
		return fmt.Errorf("media type must be movie or tv, got %q", args[0])
	}
	tmdbID, err := parseID(args[1])
	if err != nil {
		return err
	}

	in := CreateRequestInput{MediaType: mediaType, TMDBID: tmdbID}
	in.Is4K, _ = cmd.Flags().GetBool("4k")

	seasons, _ := cmd.Flags().GetString("seasons")
	if in.Seasons, err = parseSeasons(seasons); err != nil {
		return err
	}
	if mediaType == "tv" && in.Seasons == nil {
		return fmt.Errorf(`tv requests need --seasons (numbers or "all")`)
	}
	if v, _ := cmd.Flags().GetInt64("tvdb"); v > 0 {
		in.TVDBID = &v
	}
	if v, _ := cmd.Flags().GetInt64("server"); v >= 0 {
		in.ServerID = &v
	}
	if v, _ := cmd.Flags().GetInt64("profile"); v > 0 {
		in.ProfileID = &v
	}
	if v, _ := cmd.Flags().GetString("root-folder"); v != "" {
		in.RootFolder = &v
	}

	req, err := newClient().CreateRequest(in)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return printRequestResult(req)
}

func printRequestResult(req *RequestResponse) error {
	if jsonOutput {
		printJSON(req)
		return nil
	}
	printRequest(os.Stdout, req)
	return nil
}

func printRequest(w io.Writer, r *RequestResponse) {
	tier := "standard"
	if r.Is4K {
		tier = "4k"
	}
	fmt.Fprintf(w, "Request %d (%s, %s): %s\n", r.ID, r.Type, tier, r.Status)
	fmt.Fprintf(w, "  media:     %d\n", r.MediaID)
	fmt.Fprintf(w, "  requested: by user %d, %s\n", r.RequestedByID, humanize.Time(r.CreatedAt))
	if r.IsAutoRequest {
		fmt.Fprintln(w, "  auto-requested")
	}
	if len(r.Seasons) > 0 {
		parts := make([]string, 0, len(r.Seasons))
		for _, s := range r.Seasons {
			parts = append(parts, fmt.Sprintf("S%02d %s", s.SeasonNumber, s.Status))
		}
		fmt.Fprintf(w, "  seasons:   %s\n", strings.Join(parts, ", "))
	}
}
