package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/domain/overwhelm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	laneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51"))

	columnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	highStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	mediumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	lowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))
)

// render writes resp in the selected format. text renders the decoded
// response for humans; json and yaml reproduce the server payload.
func render(cmd *cobra.Command, opts *options, resp *response, text func(w io.Writer) error) error {
	w := cmd.OutOrStdout()

	if opts.output != outputText && len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}

	switch opts.output {
	case outputJSON:
		var buf bytes.Buffer
		if err := json.Indent(&buf, resp.Body, "", "  "); err != nil {
			return fmt.Errorf("failed to format response: %w", err)
		}
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err

	case outputYAML:
		var v interface{}
		if err := json.Unmarshal(resp.Body, &v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	default:
		return text(w)
	}
}

// taskLine is the one-line summary of a task.
func taskLine(t *domain.Task) string {
	line := fmt.Sprintf("%s  %s  %s", t.Title, dimStyle.Render(string(t.Lane)+"/"+string(t.Status)), dimStyle.Render(t.ID.String()))
	if t.Priority != "" {
		line += " " + priorityStyle(string(t.Priority)).Render(string(t.Priority))
	}
	return line
}

// writeTaskTable renders tasks as a bordered table.
func writeTaskTable(w io.Writer, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		parent := ""
		if t.ParentID != nil {
			parent = t.ParentID.String()[:8]
		}
		rows = append(rows, []string{
			t.ID.String(),
			t.Title,
			string(t.Lane),
			string(t.Status),
			string(t.Priority),
			parent,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "LANE", "STATUS", "PRIORITY", "PARENT").
		Rows(rows...)
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

// writeBoard renders the nested kanban view lane by lane.
func writeBoard(w io.Writer, board domain.Board) error {
	var b strings.Builder
	for _, lane := range board.Lanes {
		b.WriteString(laneStyle.Render(fmt.Sprintf("%s · %s (%d)", lane.Title, lane.Description, lane.Count)))
		b.WriteString("\n")
		for _, col := range lane.Columns {
			b.WriteString("  ")
			b.WriteString(columnStyle.Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Items))))
			b.WriteString("\n")
			for _, item := range col.Items {
				b.WriteString(strings.Repeat("  ", item.Level+2))
				marker := "-"
				if item.HasSubtasks {
					marker = "+"
					if item.Task.IsExpanded {
						marker = "v"
					}
				}
				b.WriteString(marker + " " + taskLine(item.Task))
				b.WriteString("\n")
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeReport renders the overwhelm metrics and alerts.
func writeReport(w io.Writer, report overwhelm.Report) error {
	m := report.Metrics
	var b strings.Builder
	fmt.Fprintf(&b, "Open tasks: %d (todo %d, in progress %d), urgent & important: %d\n",
		m.TotalTasks, m.TodoTasks, m.InProgressTasks, m.UrgentImportantTasks)
	fmt.Fprintf(&b, "Estimated work: %d min, without estimate: %d, average complexity: %.1f\n",
		m.TotalEstimatedMinutes, m.TasksWithoutEstimates, m.AverageComplexity)

	if len(report.Alerts) == 0 {
		b.WriteString(lowStyle.Render("No alerts. The board looks manageable."))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, alert := range report.Alerts {
		b.WriteString("\n")
		b.WriteString(priorityStyle(string(alert.Severity)).Render("[" + strings.ToUpper(string(alert.Severity)) + "] " + alert.Title))
		b.WriteString(" " + dimStyle.Render("("+overwhelm.Label(alert.Type)+")"))
		b.WriteString("\n  " + alert.Message + "\n")
		for _, s := range alert.Suggestions {
			b.WriteString("  • " + s + "\n")
		}
	}
	if len(report.QuickActions) > 0 {
		b.WriteString("\nQuick actions:\n")
		for _, a := range report.QuickActions {
			b.WriteString("  " + a.Label + dimStyle.Render(" ("+a.Action+")") + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// priorityStyle colours priorities and alert severities alike.
func priorityStyle(level string) lipgloss.Style {
	switch level {
	case "high":
		return highStyle
	case "medium":
		return mediumStyle
	default:
		return lowStyle
	}
}
