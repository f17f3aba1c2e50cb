package domain

import "strings"

// Lane is one of the four Eisenhower urgency/importance categories.
type Lane string

// Possible lane values
const (
	LaneUrgentImportant    Lane = "urgent-important"
	LaneImportantNotUrgent Lane = "important-not-urgent"
	LaneUrgentNotImportant Lane = "urgent-not-important"
	LaneNeither            Lane = "neither"
)

// Status is the kanban column a task occupies within its lane.
type Status string

// Possible status values
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// LaneInfo holds display metadata for a lane.
type LaneInfo struct {
	Lane        Lane   `json:"lane"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StatusInfo holds display metadata for a status column.
type StatusInfo struct {
	Status Status `json:"status"`
	Title  string `json:"title"`
}

var laneInfos = []LaneInfo{
	{Lane: LaneUrgentImportant, Title: "Do First", Description: "Urgent & Important"},
	{Lane: LaneImportantNotUrgent, Title: "Schedule", Description: "Important, Not Urgent"},
	{Lane: LaneUrgentNotImportant, Title: "Delegate", Description: "Urgent, Not Important"},
	{Lane: LaneNeither, Title: "Eliminate", Description: "Neither Urgent nor Important"},
}

var statusInfos = []StatusInfo{
	{Status: StatusTodo, Title: "Todo"},
	{Status: StatusInProgress, Title: "In Progress"},
	{Status: StatusDone, Title: "Done"},
}

// Lanes returns every lane in board order.
func Lanes() []LaneInfo {
	out := make([]LaneInfo, len(laneInfos))
	copy(out, laneInfos)
	return out
}

// Statuses returns every status column in board order.
func Statuses() []StatusInfo {
	out := make([]StatusInfo, len(statusInfos))
	copy(out, statusInfos)
	return out
}

// Info returns the display metadata for the lane.
// Unknown lanes get an empty title.
func (l Lane) Info() LaneInfo {
	for _, info := range laneInfos {
		if info.Lane == l {
			return info
		}
	}
	return LaneInfo{Lane: l}
}

// Title returns the column title for the status.
func (s Status) Title() string {
	for _, info := range statusInfos {
		if info.Status == s {
			return info.Title
		}
	}
	return string(s)
}

// IsValid reports whether l is a known lane.
func (l Lane) IsValid() bool {
	switch l {
	case LaneUrgentImportant, LaneImportantNotUrgent, LaneUrgentNotImportant, LaneNeither:
		return true
	}
	return false
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ContextLabel renders the lane the way prompts describe it, replacing the
// first dash: "urgent-important" becomes "urgent & important".
func (l Lane) ContextLabel() string {
	return strings.Replace(string(l), "-", " & ", 1)
}

// ParseLane converts a raw value into a Lane.
func ParseLane(raw string) (Lane, error) {
	l := Lane(strings.TrimSpace(raw))
	if !l.IsValid() {
		return "", ErrInvalidLane
	}
	return l, nil
}

// ParseStatus converts a raw value into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
