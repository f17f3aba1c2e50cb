package api

import (
	"log/slog"
	"net/http"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/eisenboard/eisenboard-api/internal/store"
	"github.com/google/uuid"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	boardService service.BoardService
	logger       *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(boardService service.BoardService, logger *slog.Logger) *TaskHandler {
	if boardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("boardService cannot be nil for TaskHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskHandler{
		boardService: boardService,
		logger:       logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests. The optional lane, status and
// parentId query parameters narrow the result.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	query := r.URL.Query()

	var filter store.TaskFilter
	if raw := query.Get("lane"); raw != "" {
		lane, err := domain.ParseLane(raw)
		if err != nil {
			log.Debug("invalid lane filter", slog.String("lane", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lane")
			return
		}
		filter.Lane = lane
	}
	if raw := query.Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			log.Debug("invalid status filter", slog.String("status", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = status
	}
	if raw := query.Get("parentId"); raw != "" {
		parentID, err := uuid.Parse(raw)
		if err != nil {
			log.Debug("invalid parent filter", slog.String("parent_id", raw))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid parent ID format")
			return
		}
		filter.ParentID = &parentID
	}

	tasks, err := h.boardService.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.boardService.AddTask(r.Context(), req.ToInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created", slog.String("task_id", task.ID.String()), slog.String("lane", string(task.Lane)))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// QuickAdd handles POST /api/tasks/quick requests.
func (h *TaskHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req QuickAddRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.boardService.QuickAdd(r.Context(), req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	task, err := h.boardService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.boardService.UpdateTask(r.Context(), taskID, req.ToPatch())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id} requests. Subtasks are
// removed with their parent.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	deleted, err := h.boardService.DeleteTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	log.Debug("task deleted", slog.String("task_id", taskID.String()), slog.Int("deleted", deleted))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{Deleted: deleted})
}

// MoveTask handles POST /api/tasks/{id}/move requests.
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.boardService.MoveTask(r.Context(), taskID, service.MoveRequest{
		Lane:         domain.Lane(req.Lane),
		Status:       domain.Status(req.Status),
		BeforeTaskID: req.BeforeTaskID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ToggleExpanded handles POST /api/tasks/{id}/toggle requests.
func (h *TaskHandler) ToggleExpanded(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	task, err := h.boardService.ToggleExpanded(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to toggle task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ClearAll handles DELETE /api/tasks requests.
func (h *TaskHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := h.boardService.ClearAll(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to clear tasks")
		return
	}

	log.Info("board cleared")
	w.WriteHeader(http.StatusNoContent)
}
