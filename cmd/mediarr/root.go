package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
	userID     int64
)

var rootCmd = &cobra.Command{
	Use:   "mediarr",
	Short: "CLI client for the mediarr request broker",
	Long: `mediarr - CLI client for the mediarr request broker

Create and moderate media requests, inspect media availability,
and trigger background jobs.

Run 'mediarrd' to start the server daemon.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("server") {
			return
		}
		if addr, ok := serverFromConfig(); ok {
			serverURL = addr
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5055", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().Int64VarP(&userID, "user", "u", 1, "Acting user id")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mediarr {{.Version}}\n")
}

func newClient() *Client {
	return NewClient(serverURL, userID)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
