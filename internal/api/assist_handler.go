package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/assist"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/job"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/service"
	"github.com/google/uuid"
)

// AssistHandler handles the language-model backed endpoints and the
// background jobs they can run as.
type AssistHandler struct {
	assistService service.AssistService
	logger        *slog.Logger
}

// NewAssistHandler creates a new AssistHandler
func NewAssistHandler(assistService service.AssistService, logger *slog.Logger) *AssistHandler {
	if assistService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("assistService cannot be nil for AssistHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AssistHandler{
		assistService: assistService,
		logger:        logger.With(slog.String("component", "assist_handler")),
	}
}

// Categorize handles POST /api/categorize requests. Model failures answer
// 200 with the fallback lane; only a missing model is an error.
func (h *AssistHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CategorizeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.assistService.Categorize(r.Context(), req.Title, req.Description)
	if err != nil {
		h.respondWithError(w, r, err, "Failed to categorize task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// CategorizeAndAdd handles POST /api/tasks/categorize requests.
func (h *AssistHandler) CategorizeAndAdd(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CategorizeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, result, err := h.assistService.CategorizeAndAdd(r.Context(), req.Title, req.Description)
	if err != nil {
		h.respondWithError(w, r, err, "Failed to add task")
		return
	}

	log.Debug("categorized task added",
		slog.String("task_id", task.ID.String()),
		slog.String("lane", string(result.Lane)),
		slog.Bool("fallback", result.Fallback))
	shared.RespondWithJSON(w, r, http.StatusCreated, CategorizeAndAddResponse{
		Task:      task,
		Lane:      result.Lane,
		Reasoning: result.Reasoning,
		Fallback:  result.Fallback,
	})
}

// Breakdown handles POST /api/tasks/{id}/breakdown requests. With
// ?async=true the breakdown runs as a background job and 202 is returned.
func (h *AssistHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	if queryBool(r, "async") {
		h.requestJob(w, r, domain.JobTypeBreakdown, taskID)
		return
	}

	result, err := h.assistService.Breakdown(r.Context(), taskID)
	if err != nil {
		h.respondWithError(w, r, err, "Failed to break down task")
		return
	}

	log.Info("task broken down",
		slog.String("task_id", taskID.String()),
		slog.Int("subtasks", len(result.Subtasks)))
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// Expand handles POST /api/tasks/{id}/expand requests. With ?async=true
// the expansion runs as a background job and 202 is returned.
func (h *AssistHandler) Expand(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := handlePathUUID(w, r, "id", "task", log)
	if !ok {
		return
	}

	if queryBool(r, "async") {
		h.requestJob(w, r, domain.JobTypeExpand, taskID)
		return
	}

	result, err := h.assistService.Expand(r.Context(), taskID)
	if err != nil {
		h.respondWithError(w, r, err, "Failed to expand task")
		return
	}

	log.Info("task expanded",
		slog.String("task_id", taskID.String()),
		slog.Int("subtasks", len(result.Subtasks)))
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// Proxy handles POST /api/ai requests: the prompt is forwarded as is and
// an upstream HTTP failure is answered with the upstream status.
func (h *AssistHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ProxyRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := h.assistService.Proxy(r.Context(), req.Prompt, req.Type)
	if err != nil {
		if upstream, ok := assist.AsUpstreamError(err); ok && upstream.StatusCode >= http.StatusBadRequest {
			shared.RespondWithErrorAndLog(w, r, upstream.StatusCode, upstream.Error(), err)
			return
		}
		h.respondWithError(w, r, err, "Failed to process AI request")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *AssistHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	jobID, ok := handlePathUUID(w, r, "id", "job", log)
	if !ok {
		return
	}

	record, err := h.assistService.GetJob(r.Context(), jobID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get job")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

func (h *AssistHandler) requestJob(w http.ResponseWriter, r *http.Request, jobType domain.JobType, taskID uuid.UUID) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	record, err := h.assistService.RequestJob(r.Context(), jobType, taskID)
	if err != nil {
		h.respondWithError(w, r, err, "Failed to schedule job")
		return
	}

	log.Info("job scheduled",
		slog.String("job_id", record.ID.String()),
		slog.String("job_type", string(record.Type)),
		slog.String("task_id", taskID.String()))
	w.Header().Set("Location", "/api/jobs/"+record.ID.String())
	shared.RespondWithJSON(w, r, http.StatusAccepted, record)
}

// respondWithError is HandleAPIError with busy and full-queue conditions
// logged at WARN, since clients tend to retry them in a loop.
func (h *AssistHandler) respondWithError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	if errors.Is(err, service.ErrAssistInProgress) || errors.Is(err, job.ErrQueueFull) {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err,
			shared.WithElevatedLogLevel())
		return
	}
	HandleAPIError(w, r, err, defaultMsg)
}
