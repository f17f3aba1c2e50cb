package domain

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength is the longest title, in characters, a task may carry.
const MaxTitleLength = 500

// Priority is an optional importance hint shown on a card.
type Priority string

// Possible priority values
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Difficulty is an optional complexity rating used by the overwhelm rules.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// EnergyLevel is the optional amount of energy a task demands.
type EnergyLevel string

// Possible energy level values
const (
	EnergyLow    EnergyLevel = "low"
	EnergyMedium EnergyLevel = "medium"
	EnergyHigh   EnergyLevel = "high"
)

// IsValid reports whether p is empty or a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case "", PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// IsValid reports whether d is empty or a known difficulty.
func (d Difficulty) IsValid() bool {
	switch d {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// IsValid reports whether e is empty or a known energy level.
func (e EnergyLevel) IsValid() bool {
	switch e {
	case "", EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}

// Task is a single card on the board. Field names in JSON match the
// export file format so an export can be imported again unchanged.
type Task struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Lane             Lane        `json:"lane"`
	Status           Status      `json:"status"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
	ParentID         *uuid.UUID  `json:"parentId,omitempty"`
	IsExpanded       bool        `json:"isExpanded,omitempty"`
	Priority         Priority    `json:"priority,omitempty"`
	Tags             []string    `json:"tags,omitempty"`
	EstimatedMinutes *int        `json:"estimatedMinutes,omitempty"`
	ActualMinutes    *int        `json:"actualMinutes,omitempty"`
	StartedAt        *time.Time  `json:"startedAt,omitempty"`
	CompletedAt      *time.Time  `json:"completedAt,omitempty"`
	Difficulty       Difficulty  `json:"difficulty,omitempty"`
	EnergyLevel      EnergyLevel `json:"energyLevel,omitempty"`
	Position         int         `json:"position"`
}

// TaskInput carries the caller-supplied fields for a new task.
type TaskInput struct {
	Title            string
	Description      string
	Lane             Lane
	Status           Status
	ParentID         *uuid.UUID
	Priority         Priority
	Tags             []string
	EstimatedMinutes *int
	Difficulty       Difficulty
	EnergyLevel      EnergyLevel
}

// TaskPatch is a partial update. Nil fields are left untouched.
// A zero EstimatedMinutes or ActualMinutes clears the value.
type TaskPatch struct {
	Title            *string
	Description      *string
	Lane             *Lane
	Status           *Status
	Priority         *Priority
	Tags             *[]string
	EstimatedMinutes *int
	ActualMinutes    *int
	Difficulty       *Difficulty
	EnergyLevel      *EnergyLevel
	IsExpanded       *bool
}

// NewTask creates a Task from the input with a fresh ID and timestamps.
// An empty lane defaults to neither and an empty status to todo.
// Returns an error if validation fails.
func NewTask(in TaskInput) (*Task, error) {
	now := time.Now().UTC()

	task := &Task{
		ID:               uuid.New(),
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Lane:             in.Lane,
		Status:           in.Status,
		CreatedAt:        now,
		UpdatedAt:        now,
		ParentID:         in.ParentID,
		Priority:         in.Priority,
		Tags:             normalizeTags(in.Tags),
		EstimatedMinutes: nonZeroOrNil(in.EstimatedMinutes),
		Difficulty:       in.Difficulty,
		EnergyLevel:      in.EnergyLevel,
	}
	if task.Lane == "" {
		task.Lane = LaneNeither
	}
	if task.Status == "" {
		task.Status = StatusTodo
	}
	if task.Status == StatusInProgress {
		task.StartedAt = &now
	}
	if task.Status == StatusDone {
		task.CompletedAt = &now
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		return ErrTaskTitleEmpty
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if !t.Lane.IsValid() {
		return ErrInvalidLane
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if !t.Difficulty.IsValid() {
		return ErrInvalidDifficulty
	}
	if !t.EnergyLevel.IsValid() {
		return ErrInvalidEnergyLevel
	}

	if t.EstimatedMinutes != nil && *t.EstimatedMinutes < 0 {
		return ErrNegativeMinutes
	}
	if t.ActualMinutes != nil && *t.ActualMinutes < 0 {
		return ErrNegativeMinutes
	}

	if t.ParentID != nil && *t.ParentID == t.ID {
		return ErrSelfParent
	}

	return nil
}

// Apply merges the patch into the task and bumps UpdatedAt.
// The task is left unchanged when the result would be invalid.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	next := t.Clone()

	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.Tags != nil {
		next.Tags = normalizeTags(*p.Tags)
	}
	if p.EstimatedMinutes != nil {
		next.EstimatedMinutes = nonZeroOrNil(p.EstimatedMinutes)
	}
	if p.ActualMinutes != nil {
		next.ActualMinutes = nonZeroOrNil(p.ActualMinutes)
	}
	if p.Difficulty != nil {
		next.Difficulty = *p.Difficulty
	}
	if p.EnergyLevel != nil {
		next.EnergyLevel = *p.EnergyLevel
	}
	if p.IsExpanded != nil {
		next.IsExpanded = *p.IsExpanded
	}

	lane, status := next.Lane, next.Status
	if p.Lane != nil {
		lane = *p.Lane
	}
	if p.Status != nil {
		status = *p.Status
	}
	if err := next.MoveTo(lane, status, now); err != nil {
		return err
	}

	next.UpdatedAt = now.UTC()
	if err := next.Validate(); err != nil {
		return err
	}

	*t = *next
	return nil
}

// MoveTo places the task in a new column and applies the status
// lifecycle: entering in-progress stamps StartedAt once, entering done
// stamps CompletedAt and derives ActualMinutes from StartedAt when no
// actual time was recorded, and leaving done clears CompletedAt.
func (t *Task) MoveTo(lane Lane, status Status, now time.Time) error {
	if !lane.IsValid() {
		return ErrInvalidLane
	}
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	now = now.UTC()
	if status != t.Status {
		switch status {
		case StatusInProgress:
			if t.StartedAt == nil {
				started := now
				t.StartedAt = &started
			}
			t.CompletedAt = nil
		case StatusDone:
			completed := now
			t.CompletedAt = &completed
			if t.StartedAt != nil && t.ActualMinutes == nil {
				minutes := int(math.Round(now.Sub(*t.StartedAt).Minutes()))
				if minutes < 0 {
					minutes = 0
				}
				t.ActualMinutes = &minutes
			}
		default:
			t.CompletedAt = nil
		}
	}

	if lane != t.Lane || status != t.Status {
		t.UpdatedAt = now
	}
	t.Lane = lane
	t.Status = status
	return nil
}

// IsActive reports whether the task still needs work.
func (t *Task) IsActive() bool {
	return t.Status != StatusDone
}

// HasEstimate reports whether a positive estimate is recorded.
func (t *Task) HasEstimate() bool {
	return t.EstimatedMinutes != nil && *t.EstimatedMinutes > 0
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	c.ParentID = cloneUUID(t.ParentID)
	c.EstimatedMinutes = cloneInt(t.EstimatedMinutes)
	c.ActualMinutes = cloneInt(t.ActualMinutes)
	c.StartedAt = cloneTime(t.StartedAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	return &c
}

// normalizeTags trims tags and drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func nonZeroOrNil(v *int) *int {
	if v == nil || *v == 0 {
		return nil
	}
	return cloneInt(v)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
