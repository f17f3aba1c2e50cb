package domain

import (
	"sort"

	"github.com/google/uuid"
)

// NestedTask is a task placed in a column with its indentation level.
type NestedTask struct {
	Task        *Task `json:"task"`
	Level       int   `json:"level"`
	HasSubtasks bool  `json:"hasSubtasks"`
}

// ColumnView is one status column inside a lane.
type ColumnView struct {
	Status Status       `json:"status"`
	Title  string       `json:"title"`
	Items  []NestedTask `json:"items"`
}

// LaneView is one lane of the board with its three status columns.
type LaneView struct {
	LaneInfo
	Count   int          `json:"count"`
	Columns []ColumnView `json:"columns"`
}

// Board is the full kanban rendering model.
type Board struct {
	Lanes []LaneView `json:"lanes"`
}

// Stats counts tasks across the board.
type Stats struct {
	Total              int `json:"total"`
	UrgentImportant    int `json:"urgent-important"`
	ImportantNotUrgent int `json:"important-not-urgent"`
	UrgentNotImportant int `json:"urgent-not-important"`
	Neither            int `json:"neither"`
	Todo               int `json:"todo"`
	InProgress         int `json:"inProgress"`
	Done               int `json:"done"`
}

// SortTasks orders tasks by Position, then CreatedAt, then ID.
func SortTasks(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// BuildBoard arranges a flat task list into lanes, columns and nested rows.
//
// Within a column a task is a root when it has no parent or its parent
// lives in another column, so a subtask moved away from its parent is still
// shown. Children follow their parent depth-first and are hidden while the
// parent is collapsed.
func BuildBoard(tasks []*Task) Board {
	children := childIndex(tasks)

	type columnKey struct {
		lane   Lane
		status Status
	}
	columns := make(map[columnKey][]*Task)
	location := make(map[uuid.UUID]columnKey, len(tasks))
	for _, t := range tasks {
		key := columnKey{t.Lane, t.Status}
		columns[key] = append(columns[key], t)
		location[t.ID] = key
	}

	board := Board{Lanes: make([]LaneView, 0, len(laneInfos))}
	for _, info := range laneInfos {
		lv := LaneView{LaneInfo: info, Columns: make([]ColumnView, 0, len(statusInfos))}
		for _, st := range statusInfos {
			key := columnKey{info.Lane, st.Status}
			colTasks := columns[key]
			lv.Count += len(colTasks)

			roots := make([]*Task, 0, len(colTasks))
			for _, t := range colTasks {
				if t.ParentID == nil {
					roots = append(roots, t)
					continue
				}
				if loc, ok := location[*t.ParentID]; !ok || loc != key {
					roots = append(roots, t)
				}
			}
			SortTasks(roots)

			col := ColumnView{Status: st.Status, Title: st.Title, Items: []NestedTask{}}
			visited := make(map[uuid.UUID]bool)
			var walk func(t *Task, level int)
			walk = func(t *Task, level int) {
				if visited[t.ID] {
					return
				}
				visited[t.ID] = true
				kids := children[t.ID]
				col.Items = append(col.Items, NestedTask{Task: t, Level: level, HasSubtasks: len(kids) > 0})
				if !t.IsExpanded {
					return
				}
				for _, kid := range kids {
					if location[kid.ID] == key {
						walk(kid, level+1)
					}
				}
			}
			for _, root := range roots {
				walk(root, 0)
			}
			lv.Columns = append(lv.Columns, col)
		}
		board.Lanes = append(board.Lanes, lv)
	}

	return board
}

// HasSubtasks reports whether any task names id as its parent.
func HasSubtasks(tasks []*Task, id uuid.UUID) bool {
	for _, t := range tasks {
		if t.ParentID != nil && *t.ParentID == id {
			return true
		}
	}
	return false
}

// Descendants returns the IDs of every task below id, at any depth.
func Descendants(tasks []*Task, id uuid.UUID) []uuid.UUID {
	children := childIndex(tasks)
	var out []uuid.UUID
	seen := map[uuid.UUID]bool{id: true}
	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, kid := range children[current] {
			if seen[kid.ID] {
				continue
			}
			seen[kid.ID] = true
			out = append(out, kid.ID)
			queue = append(queue, kid.ID)
		}
	}
	return out
}

// ComputeStats counts tasks per lane and per status.
func ComputeStats(tasks []*Task) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		switch t.Lane {
		case LaneUrgentImportant:
			s.UrgentImportant++
		case LaneImportantNotUrgent:
			s.ImportantNotUrgent++
		case LaneUrgentNotImportant:
			s.UrgentNotImportant++
		case LaneNeither:
			s.Neither++
		}
		switch t.Status {
		case StatusTodo:
			s.Todo++
		case StatusInProgress:
			s.InProgress++
		case StatusDone:
			s.Done++
		}
	}
	return s
}

// childIndex maps parent IDs to their children in display order.
func childIndex(tasks []*Task) map[uuid.UUID][]*Task {
	children := make(map[uuid.UUID][]*Task)
	for _, t := range tasks {
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], t)
		}
	}
	for _, kids := range children {
		SortTasks(kids)
	}
	return children
}
