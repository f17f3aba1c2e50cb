package api

import (
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/google/uuid"
)

// CreateTaskRequest defines the payload for POST /api/tasks.
type CreateTaskRequest struct {
	Title            string     `json:"title"                      validate:"required,max=500"`
	Description      string     `json:"description,omitempty"`
	Lane             string     `json:"lane"                       validate:"required,oneof=urgent-important important-not-urgent urgent-not-important neither"`
	Status           string     `json:"status,omitempty"           validate:"omitempty,oneof=todo in-progress done"`
	ParentID         *uuid.UUID `json:"parentId,omitempty"`
	Priority         string     `json:"priority,omitempty"         validate:"omitempty,oneof=low medium high"`
	Tags             []string   `json:"tags,omitempty"             validate:"omitempty,max=20,dive,max=50"`
	EstimatedMinutes *int       `json:"estimatedMinutes,omitempty" validate:"omitempty,gte=0"`
	Difficulty       string     `json:"difficulty,omitempty"       validate:"omitempty,oneof=easy medium hard"`
	EnergyLevel      string     `json:"energyLevel,omitempty"      validate:"omitempty,oneof=low medium high"`
}

// ToInput converts the request into a domain.TaskInput.
func (r CreateTaskRequest) ToInput() domain.TaskInput {
	return domain.TaskInput{
		Title:            r.Title,
		Description:      r.Description,
		Lane:             domain.Lane(r.Lane),
		Status:           domain.Status(r.Status),
		ParentID:         r.ParentID,
		Priority:         domain.Priority(r.Priority),
		Tags:             r.Tags,
		EstimatedMinutes: r.EstimatedMinutes,
		Difficulty:       domain.Difficulty(r.Difficulty),
		EnergyLevel:      domain.EnergyLevel(r.EnergyLevel),
	}
}

// UpdateTaskRequest defines the payload for PATCH /api/tasks/{id}.
// Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Title            *string   `json:"title,omitempty"            validate:"omitempty,max=500"`
	Description      *string   `json:"description,omitempty"`
	Lane             *string   `json:"lane,omitempty"             validate:"omitempty,oneof=urgent-important important-not-urgent urgent-not-important neither"`
	Status           *string   `json:"status,omitempty"           validate:"omitempty,oneof=todo in-progress done"`
	Priority         *string   `json:"priority,omitempty"         validate:"omitempty,oneof=low medium high"`
	Tags             *[]string `json:"tags,omitempty"             validate:"omitempty,max=20,dive,max=50"`
	EstimatedMinutes *int      `json:"estimatedMinutes,omitempty" validate:"omitempty,gte=0"`
	ActualMinutes    *int      `json:"actualMinutes,omitempty"    validate:"omitempty,gte=0"`
	Difficulty       *string   `json:"difficulty,omitempty"       validate:"omitempty,oneof=easy medium hard"`
	EnergyLevel      *string   `json:"energyLevel,omitempty"      validate:"omitempty,oneof=low medium high"`
	IsExpanded       *bool     `json:"isExpanded,omitempty"`
}

// ToPatch converts the request into a domain.TaskPatch.
func (r UpdateTaskRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:            r.Title,
		Description:      r.Description,
		Tags:             r.Tags,
		EstimatedMinutes: r.EstimatedMinutes,
		ActualMinutes:    r.ActualMinutes,
		IsExpanded:       r.IsExpanded,
	}
	if r.Lane != nil {
		lane := domain.Lane(*r.Lane)
		patch.Lane = &lane
	}
	if r.Status != nil {
		status := domain.Status(*r.Status)
		patch.Status = &status
	}
	if r.Priority != nil {
		priority := domain.Priority(*r.Priority)
		patch.Priority = &priority
	}
	if r.Difficulty != nil {
		difficulty := domain.Difficulty(*r.Difficulty)
		patch.Difficulty = &difficulty
	}
	if r.EnergyLevel != nil {
		energy := domain.EnergyLevel(*r.EnergyLevel)
		patch.EnergyLevel = &energy
	}
	return patch
}

// QuickAddRequest defines the payload for POST /api/tasks/quick.
type QuickAddRequest struct {
	Title string `json:"title" validate:"required,max=500"`
}

// MoveTaskRequest defines the payload for POST /api/tasks/{id}/move.
// Either a column (lane and/or status) or a target card is given.
type MoveTaskRequest struct {
	Lane         string     `json:"lane,omitempty"         validate:"omitempty,oneof=urgent-important important-not-urgent urgent-not-important neither"`
	Status       string     `json:"status,omitempty"       validate:"omitempty,oneof=todo in-progress done"`
	BeforeTaskID *uuid.UUID `json:"beforeTaskId,omitempty"`
}

// CategorizeRequest defines the payload for the categorize endpoints.
type CategorizeRequest struct {
	Title       string `json:"title"                 validate:"required,max=500"`
	Description string `json:"description,omitempty"`
}

// CategorizeAndAddResponse is returned by POST /api/tasks/categorize.
type CategorizeAndAddResponse struct {
	Task      *domain.Task `json:"task"`
	Lane      domain.Lane  `json:"lane"`
	Reasoning string       `json:"reasoning"`
	Fallback  bool         `json:"fallback"`
}

// ProxyRequest defines the payload for POST /api/ai.
type ProxyRequest struct {
	Prompt string `json:"prompt"`
	Type   string `json:"type"`
}

// LanesResponse is returned by GET /api/lanes.
type LanesResponse struct {
	Lanes    []domain.LaneInfo   `json:"lanes"`
	Statuses []domain.StatusInfo `json:"statuses"`
}

// DeleteTaskResponse is returned by DELETE /api/tasks/{id}.
type DeleteTaskResponse struct {
	Deleted int `json:"deleted"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	AIEnabled bool   `json:"aiEnabled"`
}
