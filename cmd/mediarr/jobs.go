package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List background jobs",
	RunE:  runJobsCmd,
}

var jobsRunCmd = &cobra.Command{
	Use:   "run <id>",
	Short: "Run a job now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().RunJob(args[0]); err != nil {
			return fmt.Errorf("run job: %w", err)
		}
		fmt.Printf("Job %s started\n", args[0])
		return nil
	},
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a running job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().CancelJob(args[0]); err != nil {
			return fmt.Errorf("cancel job: %w", err)
		}
		fmt.Printf("Job %s cancel requested\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsRunCmd, jobsCancelCmd)
}

func runJobsCmd(cmd *cobra.Command, args []string) error {
	jobs, err := newClient().Jobs()
	if err != nil {
		return fmt.Errorf("jobs fetch failed: %w", err)
	}
	if jsonOutput {
		printJSON(jobs)
		return nil
	}
	printJobs(os.Stdout, jobs.Items)
	return nil
}

func printJobs(w io.Writer, jobs []JobResponse) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs registered")
		return
	}

	fmt.Fprintf(w, "  %-20s %-8s %-14s %-14s %s\n", "ID", "STATE", "NEXT RUN", "LAST RUN", "SCHEDULE")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 76))
	for _, j := range jobs {
		state := "idle"
		if j.Running {
			state = "running"
		}
		schedule := j.Schedule
		if schedule == "" {
			schedule = "manual"
		}
		fmt.Fprintf(w, "  %-20s %-8s %-14s %-14s %s\n", j.ID, state, relTime(j.NextRun), relTime(j.LastRun), schedule)
		if j.LastError != "" {
			fmt.Fprintf(w, "    last error: %s\n", j.LastError)
		}
	}
}

func relTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return humanize.Time(*t)
}
