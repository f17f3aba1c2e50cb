package domain

import (
	"time"

	"github.com/google/uuid"
)

type sampleTask struct {
	title       string
	description string
	lane        Lane
	status      Status
	priority    Priority
	tags        []string
}

var sampleTasks = []sampleTask{
	{"Fix critical production bug", "Database connection timeout affecting users", LaneUrgentImportant, StatusInProgress, PriorityHigh, []string{"bug", "production"}},
	{"Prepare quarterly presentation", "Board meeting next week", LaneUrgentImportant, StatusTodo, PriorityHigh, []string{"presentation"}},
	{"Learn new framework", "Study Next.js 15 features", LaneImportantNotUrgent, StatusTodo, PriorityMedium, []string{"learning"}},
	{"Plan team building event", "Organize Q2 team outing", LaneImportantNotUrgent, StatusTodo, PriorityMedium, []string{"team"}},
	{"Review design mockups", "Quick feedback needed", LaneImportantNotUrgent, StatusDone, PriorityLow, []string{"design"}},
	{"Respond to Slack messages", "Multiple threads need replies", LaneUrgentNotImportant, StatusInProgress, PriorityLow, []string{"communication"}},
	{"Schedule dentist appointment", "Overdue checkup", LaneUrgentNotImportant, StatusTodo, PriorityLow, []string{"personal"}},
	{"Organize desk cables", "Clean up workspace", LaneNeither, StatusTodo, PriorityLow, []string{"organization"}},
	{"Browse social media", "Check latest updates", LaneNeither, StatusTodo, PriorityLow, []string{"leisure"}},
}

// SampleTasks returns the demonstration board: nine tasks spread over
// every lane, each at the end of its column.
func SampleTasks(now time.Time) []*Task {
	now = now.UTC()
	positions := make(map[Lane]map[Status]int)
	out := make([]*Task, 0, len(sampleTasks))
	for _, s := range sampleTasks {
		if positions[s.lane] == nil {
			positions[s.lane] = make(map[Status]int)
		}
		t := &Task{
			ID:          uuid.New(),
			Title:       s.title,
			Description: s.description,
			Lane:        s.lane,
			Status:      s.status,
			CreatedAt:   now,
			UpdatedAt:   now,
			Priority:    s.priority,
			Tags:        append([]string(nil), s.tags...),
			Position:    positions[s.lane][s.status],
		}
		positions[s.lane][s.status]++
		switch t.Status {
		case StatusInProgress:
			started := now
			t.StartedAt = &started
		case StatusDone:
			completed := now
			t.CompletedAt = &completed
		}
		out = append(out, t)
	}
	return out
}
