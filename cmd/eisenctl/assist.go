package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/eisenboard/eisenboard-api/internal/api"
	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/spf13/cobra"
)

func categorizeCmd(opts *options) *cobra.Command {
	var (
		description string
		add         bool
	)

	cmd := &cobra.Command{
		Use:   "categorize <title>",
		Short: "Ask the AI which lane a task belongs in",
		Long: `Ask the AI which lane a task belongs in. With --add the task is also
created in that lane. When the model cannot answer, the task lands in
Schedule and the result is marked as a fallback.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CategorizeRequest{Title: strings.Join(args, " "), Description: description}

			path := "/api/categorize"
			if add {
				path = "/api/tasks/categorize"
			}
			resp, err := opts.client().do(cmd.Context(), http.MethodPost, path, req)
			if err != nil {
				return err
			}

			return render(cmd, opts, resp, func(w io.Writer) error {
				if add {
					var result api.CategorizeAndAddResponse
					if err := resp.decode(&result); err != nil {
						return err
					}
					if _, err := fmt.Fprintf(w, "Added %s\n", taskLine(result.Task)); err != nil {
						return err
					}
					return writeCategorization(w, assist.Categorization{
						Lane:      result.Lane,
						Reasoning: result.Reasoning,
						Fallback:  result.Fallback,
					})
				}

				var result assist.Categorization
				if err := resp.decode(&result); err != nil {
					return err
				}
				return writeCategorization(w, result)
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().BoolVar(&add, "add", false, "Also add the task to the suggested lane")
	return cmd
}

func writeCategorization(w io.Writer, c assist.Categorization) error {
	lane := string(c.Lane)
	if info, ok := laneInfo(c.Lane); ok {
		lane = fmt.Sprintf("%s (%s)", info.Title, c.Lane)
	}
	line := "Lane: " + lane
	if c.Fallback {
		line += dimStyle.Render(" [fallback]")
	}
	_, err := fmt.Fprintf(w, "%s\nReasoning: %s\n", line, c.Reasoning)
	return err
}

func laneInfo(lane domain.Lane) (domain.LaneInfo, bool) {
	for _, info := range domain.Lanes() {
		if info.Lane == lane {
			return info, true
		}
	}
	return domain.LaneInfo{}, false
}

func breakdownCmd(opts *options) *cobra.Command {
	return assistCmd(opts, "breakdown", "Split a task into subtasks spread over the lanes")
}

func expandCmd(opts *options) *cobra.Command {
	return assistCmd(opts, "expand", "Expand a task into detailed subtasks in its own column")
}

// assistCmd builds the breakdown and expand commands, which differ only in
// the endpoint they call.
func assistCmd(opts *options, operation, short string) *cobra.Command {
	var async bool

	cmd := &cobra.Command{
		Use:   operation + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			path := "/api/tasks/" + id.String() + "/" + operation
			if async {
				path += "?async=true"
			}
			resp, err := opts.client().do(cmd.Context(), http.MethodPost, path, nil)
			if err != nil {
				return err
			}

			return render(cmd, opts, resp, func(w io.Writer) error {
				if resp.StatusCode == http.StatusAccepted {
					var record domain.Job
					if err := resp.decode(&record); err != nil {
						return err
					}
					_, err := fmt.Fprintf(w, "Job %s queued (%s). Follow it with: eisenctl job %s\n",
						record.ID, record.Type, record.ID)
					return err
				}

				var result service.BreakdownResult
				if err := resp.decode(&result); err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "Created %d subtasks under %q:\n", len(result.Subtasks), result.Parent.Title); err != nil {
					return err
				}
				for _, sub := range result.Subtasks {
					if _, err := fmt.Fprintf(w, "  - %s\n", taskLine(sub)); err != nil {
						return err
					}
				}
				if result.OverallApproach != "" {
					_, err := fmt.Fprintf(w, "Approach: %s\n", result.OverallApproach)
					return err
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&async, "async", false, "Run as a background job and return immediately")
	return cmd
}

func jobCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "job <id>",
		Short: "Show the status of a background job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/jobs/"+id.String(), nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var record domain.Job
				if err := resp.decode(&record); err != nil {
					return err
				}
				line := fmt.Sprintf("Job %s: %s %s, task %s", record.ID, record.Type, record.Status, record.TaskID)
				switch record.Status {
				case domain.JobStatusCompleted:
					line += fmt.Sprintf(", %d subtasks", record.ResultCount)
				case domain.JobStatusFailed:
					line += ": " + record.Error
				}
				_, err := fmt.Fprintln(w, line)
				return err
			})
		},
	}
}
