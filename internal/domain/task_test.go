package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestNewTask(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{
		Title:    "  Write report  ",
		Lane:     LaneUrgentImportant,
		Priority: PriorityHigh,
		Tags:     []string{"work", " ", "work", "q3"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if task.Title != "Write report" {
		t.Errorf("Expected trimmed title, got %q", task.Title)
	}
	if task.Status != StatusTodo {
		t.Errorf("Expected status %s, got %s", StatusTodo, task.Status)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "work" || task.Tags[1] != "q3" {
		t.Errorf("Expected tags [work q3], got %v", task.Tags)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected timestamps to be set")
	}
}

func TestNewTaskDefaults(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{Title: "Anything", EstimatedMinutes: intPtr(0)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Lane != LaneNeither {
		t.Errorf("Expected lane %s, got %s", LaneNeither, task.Lane)
	}
	if task.EstimatedMinutes != nil {
		t.Errorf("Expected zero estimate to be dropped, got %d", *task.EstimatedMinutes)
	}
}

func TestNewTaskInProgressStampsStart(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{Title: "Started", Status: StatusInProgress})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.StartedAt == nil {
		t.Error("Expected StartedAt to be set for in-progress task")
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	valid := func() Task {
		return Task{ID: id, Title: "Valid", Lane: LaneNeither, Status: StatusTodo}
	}

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr error
	}{
		{"valid", func(*Task) {}, nil},
		{"nil id", func(t *Task) { t.ID = uuid.Nil }, ErrTaskIDEmpty},
		{"blank title", func(t *Task) { t.Title = "   " }, ErrTaskTitleEmpty},
		{"long title", func(t *Task) { t.Title = strings.Repeat("a", MaxTitleLength+1) }, ErrTaskTitleTooLong},
		{"bad lane", func(t *Task) { t.Lane = "someday" }, ErrInvalidLane},
		{"bad status", func(t *Task) { t.Status = "blocked" }, ErrInvalidStatus},
		{"bad priority", func(t *Task) { t.Priority = "urgent" }, ErrInvalidPriority},
		{"bad difficulty", func(t *Task) { t.Difficulty = "extreme" }, ErrInvalidDifficulty},
		{"bad energy", func(t *Task) { t.EnergyLevel = "none" }, ErrInvalidEnergyLevel},
		{"negative estimate", func(t *Task) { t.EstimatedMinutes = intPtr(-5) }, ErrNegativeMinutes},
		{"self parent", func(t *Task) { t.ParentID = &id }, ErrSelfParent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := valid()
			tc.mutate(&task)
			err := task.Validate()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Expected %v to wrap ErrValidation", err)
			}
		})
	}
}

func TestTaskApply(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{Title: "Original", EstimatedMinutes: intPtr(30)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	now := task.UpdatedAt.Add(time.Minute)
	title := "Renamed"
	zero := 0
	lane := LaneUrgentImportant
	if err := task.Apply(TaskPatch{Title: &title, EstimatedMinutes: &zero, Lane: &lane}, now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.Title != "Renamed" {
		t.Errorf("Expected title Renamed, got %s", task.Title)
	}
	if task.EstimatedMinutes != nil {
		t.Error("Expected zero estimate to clear the value")
	}
	if task.Lane != LaneUrgentImportant {
		t.Errorf("Expected lane %s, got %s", LaneUrgentImportant, task.Lane)
	}
	if !task.UpdatedAt.Equal(now.UTC()) {
		t.Errorf("Expected UpdatedAt %v, got %v", now, task.UpdatedAt)
	}
}

func TestTaskApplyInvalidLeavesTaskUntouched(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{Title: "Keep me"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	before := *task

	blank := " "
	err = task.Apply(TaskPatch{Title: &blank}, time.Now())
	if !errors.Is(err, ErrTaskTitleEmpty) {
		t.Fatalf("Expected ErrTaskTitleEmpty, got %v", err)
	}
	if task.Title != before.Title || !task.UpdatedAt.Equal(before.UpdatedAt) {
		t.Error("Expected task to be unchanged after invalid patch")
	}
}

func TestTaskMoveToLifecycle(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{Title: "Lifecycle"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	if err := task.MoveTo(LaneNeither, StatusInProgress, start); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.StartedAt == nil || !task.StartedAt.Equal(start) {
		t.Fatalf("Expected StartedAt %v, got %v", start, task.StartedAt)
	}

	done := start.Add(95 * time.Minute)
	if err := task.MoveTo(LaneNeither, StatusDone, done); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(done) {
		t.Errorf("Expected CompletedAt %v, got %v", done, task.CompletedAt)
	}
	if task.ActualMinutes == nil || *task.ActualMinutes != 95 {
		t.Errorf("Expected 95 actual minutes, got %v", task.ActualMinutes)
	}

	if err := task.MoveTo(LaneNeither, StatusTodo, done.Add(time.Hour)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.CompletedAt != nil {
		t.Error("Expected CompletedAt to be cleared when leaving done")
	}
	if !task.StartedAt.Equal(start) {
		t.Error("Expected StartedAt to be kept from the first start")
	}
}

func TestTaskMoveToRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskInput{Title: "Stay"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := task.MoveTo("elsewhere", StatusTodo, time.Now()); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}
	if err := task.MoveTo(LaneNeither, "later", time.Now()); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskClone(t *testing.T) {
	t.Parallel()

	parent := uuid.New()
	task := &Task{ID: uuid.New(), Title: "Clone", Tags: []string{"a"}, ParentID: &parent, EstimatedMinutes: intPtr(10)}
	c := task.Clone()
	c.Tags[0] = "b"
	*c.EstimatedMinutes = 20
	*c.ParentID = uuid.New()

	if task.Tags[0] != "a" || *task.EstimatedMinutes != 10 || *task.ParentID != parent {
		t.Error("Expected clone to be independent of the original")
	}
}

func TestLaneHelpers(t *testing.T) {
	t.Parallel()

	if got := LaneUrgentImportant.ContextLabel(); got != "urgent & important" {
		t.Errorf("Expected 'urgent & important', got %q", got)
	}
	if got := LaneImportantNotUrgent.ContextLabel(); got != "important & not-urgent" {
		t.Errorf("Expected 'important & not-urgent', got %q", got)
	}
	if got := LaneUrgentImportant.Info().Title; got != "Do First" {
		t.Errorf("Expected 'Do First', got %q", got)
	}
	if got := StatusInProgress.Title(); got != "In Progress" {
		t.Errorf("Expected 'In Progress', got %q", got)
	}
	if _, err := ParseLane("quadrant-9"); !errors.Is(err, ErrInvalidLane) {
		t.Errorf("Expected ErrInvalidLane, got %v", err)
	}
	if lane, err := ParseLane(" neither "); err != nil || lane != LaneNeither {
		t.Errorf("Expected neither, got %s (%v)", lane, err)
	}
	if len(Lanes()) != 4 || len(Statuses()) != 3 {
		t.Error("Expected four lanes and three statuses")
	}
}
