package service

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

// Export is a snapshot of the board ready to be written to a file.
type Export struct {
	FileName string
	Tasks    []*domain.Task
}

// ExportFileName returns the download name used for an export on day now.
func ExportFileName(now time.Time) string {
	return "eisenhower-tasks-" + now.UTC().Format("2006-01-02") + ".json"
}

// ImportedTask is one entry of an export file. It is deliberately loose:
// older files carry a "quadrant" instead of lane and status, and IDs may
// not be UUIDs.
type ImportedTask struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description,omitempty"`
	Lane             string   `json:"lane,omitempty"`
	Quadrant         string   `json:"quadrant,omitempty"`
	Status           string   `json:"status,omitempty"`
	CreatedAt        string   `json:"createdAt,omitempty"`
	UpdatedAt        string   `json:"updatedAt,omitempty"`
	ParentID         string   `json:"parentId,omitempty"`
	IsExpanded       bool     `json:"isExpanded,omitempty"`
	Priority         string   `json:"priority,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	EstimatedMinutes *int     `json:"estimatedMinutes,omitempty"`
	ActualMinutes    *int     `json:"actualMinutes,omitempty"`
	StartedAt        string   `json:"startedAt,omitempty"`
	CompletedAt      string   `json:"completedAt,omitempty"`
	Difficulty       string   `json:"difficulty,omitempty"`
	EnergyLevel      string   `json:"energyLevel,omitempty"`
	Position         *int     `json:"position,omitempty"`
}

// ImportResult reports how many entries were kept and skipped.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Export returns every task in board order with the dated file name.
func (s *boardServiceImpl) Export(ctx context.Context) (*Export, error) {
	tasks, err := s.tasks.List(ctx, store.TaskFilter{})
	if err != nil {
		return nil, NewServiceError("export", "failed to list tasks", err)
	}
	return &Export{FileName: ExportFileName(s.now()), Tasks: tasks}, nil
}

// Import keeps entries that have an id, a title and a lane (or legacy
// quadrant), then swaps the whole board for them in one transaction.
func (s *boardServiceImpl) Import(ctx context.Context, entries []ImportedTask) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks := convertImport(entries, s.now())
	if len(tasks) == 0 {
		log.Info("import rejected, no valid tasks", "entries", len(entries))
		return nil, ErrNoValidTasks
	}

	if err := s.replaceAll(ctx, "import", tasks); err != nil {
		return nil, err
	}

	s.metrics.TaskMutation("import")
	result := &ImportResult{Imported: len(tasks), Skipped: len(entries) - len(tasks)}
	log.Info("board imported", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// convertImport turns raw entries into valid tasks: UUID ids are kept,
// other ids get fresh UUIDs with parent references remapped, unknown
// optional values are dropped, dangling or cyclic parents are cleared and
// positions are renumbered per column.
func convertImport(entries []ImportedTask, now time.Time) []*domain.Task {
	type pending struct {
		task     *domain.Task
		parent   string
		position int
		hasPos   bool
		index    int
	}

	ids := make(map[string]uuid.UUID, len(entries))
	used := make(map[uuid.UUID]bool, len(entries))
	var kept []pending
	for i, e := range entries {
		rawID := strings.TrimSpace(e.ID)
		title := truncateTitle(strings.TrimSpace(e.Title))
		laneRaw := firstNonBlank(e.Lane, e.Quadrant)
		if rawID == "" || title == "" || laneRaw == "" {
			continue
		}
		if _, dup := ids[rawID]; dup {
			continue
		}

		id, err := uuid.Parse(rawID)
		if err != nil || id == uuid.Nil || used[id] {
			id = uuid.New()
		}

		lane := domain.Lane(laneRaw)
		if !lane.IsValid() {
			lane = domain.LaneNeither
		}
		status := domain.Status(strings.TrimSpace(e.Status))
		if !status.IsValid() {
			status = domain.StatusTodo
		}

		created := parseTime(e.CreatedAt, now)
		t := &domain.Task{
			ID:               id,
			Title:            title,
			Description:      e.Description,
			Lane:             lane,
			Status:           status,
			CreatedAt:        created,
			UpdatedAt:        parseTime(e.UpdatedAt, created),
			IsExpanded:       e.IsExpanded,
			Priority:         domain.Priority(e.Priority),
			Tags:             e.Tags,
			EstimatedMinutes: nonNegative(e.EstimatedMinutes),
			ActualMinutes:    nonNegative(e.ActualMinutes),
			StartedAt:        parseOptionalTime(e.StartedAt),
			CompletedAt:      parseOptionalTime(e.CompletedAt),
			Difficulty:       domain.Difficulty(e.Difficulty),
			EnergyLevel:      domain.EnergyLevel(e.EnergyLevel),
		}
		if !t.Priority.IsValid() {
			t.Priority = ""
		}
		if !t.Difficulty.IsValid() {
			t.Difficulty = ""
		}
		if !t.EnergyLevel.IsValid() {
			t.EnergyLevel = ""
		}
		if err := t.Validate(); err != nil {
			continue
		}

		p := pending{task: t, parent: strings.TrimSpace(e.ParentID), index: i}
		if e.Position != nil {
			p.position, p.hasPos = *e.Position, true
		}
		ids[rawID] = id
		used[id] = true
		kept = append(kept, p)
	}

	byID := make(map[uuid.UUID]*domain.Task, len(kept))
	for _, p := range kept {
		byID[p.task.ID] = p.task
	}
	for _, p := range kept {
		if p.parent == "" {
			continue
		}
		if parentID, ok := ids[p.parent]; ok && parentID != p.task.ID {
			pid := parentID
			p.task.ParentID = &pid
		}
	}
	breakCycles(byID)

	// Renumber each column: explicit positions first, then file order.
	type columnKey struct {
		lane   domain.Lane
		status domain.Status
	}
	columns := make(map[columnKey][]pending)
	for _, p := range kept {
		key := columnKey{p.task.Lane, p.task.Status}
		columns[key] = append(columns[key], p)
	}
	for _, col := range columns {
		sort.SliceStable(col, func(i, j int) bool {
			a, b := col[i], col[j]
			if a.hasPos != b.hasPos {
				return a.hasPos
			}
			if a.hasPos && a.position != b.position {
				return a.position < b.position
			}
			return a.index < b.index
		})
		for i, p := range col {
			p.task.Position = i
		}
	}

	out := make([]*domain.Task, 0, len(kept))
	for _, p := range kept {
		out = append(out, p.task)
	}
	return out
}

// breakCycles clears the parent of the first task found closing a loop,
// so every chain of parents ends at a root.
func breakCycles(byID map[uuid.UUID]*domain.Task) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[uuid.UUID]int, len(byID))

	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, start := range ids {
		var path []*domain.Task
		current := byID[start]
		for current != nil && state[current.ID] == unvisited {
			state[current.ID] = visiting
			path = append(path, current)
			if current.ParentID == nil {
				break
			}
			next := byID[*current.ParentID]
			if next != nil && state[next.ID] == visiting {
				current.ParentID = nil
				break
			}
			current = next
		}
		for _, t := range path {
			state[t.ID] = done
		}
	}
}

// truncateTitle cuts over-long imported titles to the longest title a task
// may carry instead of dropping the entry.
func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= domain.MaxTitleLength {
		return title
	}
	return strings.TrimSpace(string([]rune(title)[:domain.MaxTitleLength]))
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var importTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02"}

func parseOptionalTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func parseTime(raw string, fallback time.Time) time.Time {
	if t := parseOptionalTime(raw); t != nil {
		return *t
	}
	return fallback
}

func nonNegative(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	c := *v
	return &c
}
