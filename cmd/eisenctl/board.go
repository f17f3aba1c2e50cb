package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/eisenboard/eisenboard-api/internal/api"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/domain/overwhelm"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/spf13/cobra"
)

func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodGet, "/health", nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var health api.HealthResponse
				if err := resp.decode(&health); err != nil {
					return err
				}
				ai := "disabled"
				if health.AIEnabled {
					ai = "enabled"
				}
				_, err := fmt.Fprintf(w, "Server Status: %s\nAI: %s\n", health.Status, ai)
				return err
			})
		},
	}
}

func boardCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the board by lane and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/board", nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var board domain.Board
				if err := resp.decode(&board); err != nil {
					return err
				}
				return writeBoard(w, board)
			})
		},
	}
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts per lane and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/stats", nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var s domain.Stats
				if err := resp.decode(&s); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w,
					"Total: %d\n"+
						"  Do First:  %d\n  Schedule:  %d\n  Delegate:  %d\n  Eliminate: %d\n"+
						"To Do: %d  In Progress: %d  Done: %d\n",
					s.Total,
					s.UrgentImportant, s.ImportantNotUrgent, s.UrgentNotImportant, s.Neither,
					s.Todo, s.InProgress, s.Done)
				return err
			})
		},
	}
}

func alertsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Show overwhelm alerts for the open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/alerts", nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var report overwhelm.Report
				if err := resp.decode(&report); err != nil {
					return err
				}
				return writeReport(w, report)
			})
		},
	}
}

func clearCmd(opts *options) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task on the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the board without --yes")
			}
			resp, err := opts.client().do(cmd.Context(), http.MethodDelete, "/api/tasks", nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Board cleared.")
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting all tasks")
	return cmd
}

func sampleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Replace the board with the sample tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/sample", nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var tasks []*domain.Task
				if err := resp.decode(&tasks); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "Loaded %d sample tasks.\n", len(tasks))
				return err
			})
		},
	}
}

func exportCmd(opts *options) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every task to a JSON file",
		Long: `Export every task to a JSON file. Without --file the name suggested by
the server (eisenhower-tasks-YYYY-MM-DD.json) is used in the current
directory. Use --file - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/export", nil)
			if err != nil {
				return err
			}

			if file == "-" {
				_, err := cmd.OutOrStdout().Write(resp.Body)
				return err
			}
			if file == "" {
				file = filepath.Base(resp.attachmentName())
				if file == "" || file == "." || file == string(filepath.Separator) {
					file = service.ExportFileName(timeNow())
				}
			}
			if err := os.WriteFile(file, resp.Body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", file, err)
			}

			var tasks []*domain.Task
			if err := resp.decode(&tasks); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), file)
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Output file (- for stdout)")
	return cmd
}

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the board with the tasks of an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/import", data)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var result service.ImportResult
				if err := resp.decode(&result); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "Imported %d tasks (%d skipped).\n", result.Imported, result.Skipped)
				return err
			})
		},
	}
}
