// Package main implements eisenctl, a command line client for the Eisenboard
// API server.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// options holds the persistent flags shared by every command.
type options struct {
	server  string
	output  string
	timeout time.Duration
}

// client builds an API client from the flags.
func (o *options) client() *client {
	return newClient(o.server, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "eisenctl",
		Short: "CLI for the Eisenboard task board",
		Long: `eisenctl talks to an Eisenboard API server. It manages tasks on the
Eisenhower board, shows statistics and overwhelm alerts, and runs the
AI-assisted categorize, breakdown and expand operations.

Examples:
  # Show the board
  eisenctl board

  # Add a task to the Schedule lane
  eisenctl quick "Plan the quarterly review"

  # Break a task down in the background and follow the job
  eisenctl breakdown 3f1c... --async
  eisenctl job 9a2e...`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputText, outputJSON, outputYAML:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (want text, json or yaml)", opts.output)
			}
		},
	}

	defaultServer := "http://localhost:8080"
	if env := os.Getenv("EISENBOARD_SERVER"); env != "" {
		defaultServer = env
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "Eisenboard server URL (env EISENBOARD_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", outputText, "Output format: text, json or yaml")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Request timeout")

	rootCmd.AddCommand(
		healthCmd(opts),
		boardCmd(opts),
		statsCmd(opts),
		alertsCmd(opts),
		listCmd(opts),
		addCmd(opts),
		quickCmd(opts),
		moveCmd(opts),
		toggleCmd(opts),
		deleteCmd(opts),
		clearCmd(opts),
		sampleCmd(opts),
		exportCmd(opts),
		importCmd(opts),
		categorizeCmd(opts),
		breakdownCmd(opts),
		expandCmd(opts),
		jobCmd(opts),
	)

	return rootCmd
}
