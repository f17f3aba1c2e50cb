package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/api"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// timeNow names default export files.
var timeNow = time.Now

// parseID validates a task or job ID argument.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid ID %q: %w", raw, err)
	}
	return id, nil
}

// renderTask prints a single task prefixed by verb.
func renderTask(cmd *cobra.Command, opts *options, resp *response, verb string) error {
	return render(cmd, opts, resp, func(w io.Writer) error {
		var task domain.Task
		if err := resp.decode(&task); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%s %s\n", verb, taskLine(&task))
		return err
	})
}

func listCmd(opts *options) *cobra.Command {
	var lane, status, parent string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered by lane, status or parent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if lane != "" {
				query.Set("lane", lane)
			}
			if status != "" {
				query.Set("status", status)
			}
			if parent != "" {
				id, err := parseID(parent)
				if err != nil {
					return err
				}
				query.Set("parentId", id.String())
			}

			path := "/api/tasks"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			resp, err := opts.client().do(cmd.Context(), http.MethodGet, path, nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var tasks []*domain.Task
				if err := resp.decode(&tasks); err != nil {
					return err
				}
				return writeTaskTable(w, tasks)
			})
		},
	}

	cmd.Flags().StringVarP(&lane, "lane", "l", "", "Filter by lane")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (todo, in-progress, done)")
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Only subtasks of this task")
	return cmd
}

func addCmd(opts *options) *cobra.Command {
	var (
		req      api.CreateTaskRequest
		parent   string
		estimate int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to a lane",
		Long: `Add a task to a lane.

Lanes: urgent-important (Do First), important-not-urgent (Schedule),
urgent-not-important (Delegate), neither (Eliminate).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = strings.Join(args, " ")
			if parent != "" {
				id, err := parseID(parent)
				if err != nil {
					return err
				}
				req.ParentID = &id
			}
			if cmd.Flags().Changed("estimate") {
				req.EstimatedMinutes = &estimate
			}

			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/tasks", req)
			if err != nil {
				return err
			}
			return renderTask(cmd, opts, resp, "Added")
		},
	}

	cmd.Flags().StringVarP(&req.Lane, "lane", "l", "", "Lane for the task (required)")
	cmd.Flags().StringVarP(&req.Description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&req.Status, "status", "s", "", "Initial status (default todo)")
	cmd.Flags().StringVarP(&req.Priority, "priority", "p", "", "Priority: low, medium or high")
	cmd.Flags().StringSliceVarP(&req.Tags, "tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "Estimated minutes")
	cmd.Flags().StringVar(&req.Difficulty, "difficulty", "", "Difficulty: easy, medium or hard")
	cmd.Flags().StringVar(&req.EnergyLevel, "energy", "", "Energy level: low, medium or high")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent task ID")
	_ = cmd.MarkFlagRequired("lane")
	return cmd
}

func quickCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "quick <title>",
		Short: "Add a todo to the Schedule lane",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/tasks/quick",
				api.QuickAddRequest{Title: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			return renderTask(cmd, opts, resp, "Added")
		},
	}
}

func moveCmd(opts *options) *cobra.Command {
	var (
		req    api.MoveTaskRequest
		before string
	)

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move a task to another column or in front of another task",
		Long: `Move a task to another column with --lane and/or --status, or drop it
in front of another task with --before. Subtasks follow their parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if before != "" {
				target, err := parseID(before)
				if err != nil {
					return err
				}
				req.BeforeTaskID = &target
			}
			if req.Lane == "" && req.Status == "" && req.BeforeTaskID == nil {
				return fmt.Errorf("nothing to do: give --lane, --status or --before")
			}

			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/tasks/"+id.String()+"/move", req)
			if err != nil {
				return err
			}
			return renderTask(cmd, opts, resp, "Moved")
		},
	}

	cmd.Flags().StringVarP(&req.Lane, "lane", "l", "", "Destination lane")
	cmd.Flags().StringVarP(&req.Status, "status", "s", "", "Destination status")
	cmd.Flags().StringVarP(&before, "before", "b", "", "Drop the task in front of this task")
	return cmd
}

func toggleCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Expand or collapse a task's subtasks on the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/tasks/"+id.String()+"/toggle", nil)
			if err != nil {
				return err
			}
			return renderTask(cmd, opts, resp, "Toggled")
		},
	}
}

func deleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task and its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			resp, err := opts.client().do(cmd.Context(), http.MethodDelete, "/api/tasks/"+id.String(), nil)
			if err != nil {
				return err
			}
			return render(cmd, opts, resp, func(w io.Writer) error {
				var result api.DeleteTaskResponse
				if err := resp.decode(&result); err != nil {
					return err
				}
				_, err := fmt.Fprintf(w, "Deleted %d task(s).\n", result.Deleted)
				return err
			})
		},
	}
}
