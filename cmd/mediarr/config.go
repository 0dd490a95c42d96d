package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without starting the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configTestCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")
	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := "config.toml"
	if len(args) > 0 {
		path = args[0]
	} else if found, err := config.Discover(); err == nil {
		path = found
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			printConfigErrors(os.Stdout, cfgErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(os.Stdout, cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}
	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, msg := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "Server:    %s\n", net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)))
	fmt.Fprintf(w, "Database:  %s\n", cfg.Database.Path)
	fmt.Fprintf(w, "Plex:      %s (%d libraries)\n", cfg.Plex.URL, len(cfg.Plex.Libraries))
	for _, r := range cfg.Radarr {
		fmt.Fprintf(w, "Radarr:    %d %s (4k=%t default=%t sync=%t)\n", r.ID, r.Name, r.Is4K, r.IsDefault, r.SyncEnabled)
	}
	for _, s := range cfg.Sonarr {
		fmt.Fprintf(w, "Sonarr:    %d %s (4k=%t default=%t sync=%t)\n", s.ID, s.Name, s.Is4K, s.IsDefault, s.SyncEnabled)
	}
	fmt.Fprintf(w, "Jobs:      availability %q, full scan %q, recent scan %q\n",
		cfg.Jobs.AvailabilitySync, cfg.Jobs.PlexFullScan, cfg.Jobs.PlexRecentScan)
	if cfg.Notifications.Webhook != nil {
		fmt.Fprintf(w, "Webhook:   %s\n", cfg.Notifications.Webhook.URL)
	}
}

// serverFromConfig derives the API address from a discovered config file.
// Unresolved environment variables are fine here, only [server] matters.
func serverFromConfig() (string, bool) {
	path, err := config.Discover()
	if err != nil {
		return "", false
	}
	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		return "", false
	}
	host := cfg.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)), true
}
