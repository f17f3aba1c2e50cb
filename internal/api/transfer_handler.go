package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/service"
)

// TransferHandler handles board export and import.
type TransferHandler struct {
	boardService service.BoardService
	logger       *slog.Logger
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(boardService service.BoardService, logger *slog.Logger) *TransferHandler {
	if boardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("boardService cannot be nil for TransferHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TransferHandler{
		boardService: boardService,
		logger:       logger.With(slog.String("component", "transfer_handler")),
	}
}

// Export handles GET /api/export requests. The tasks are sent as a JSON
// file attachment named after the current date.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	export, err := h.boardService.Export(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export tasks")
		return
	}

	tasks := export.Tasks
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	log.Debug("board exported", slog.Int("tasks", len(tasks)), slog.String("file", export.FileName))
	shared.RespondWithAttachment(w, r, export.FileName, tasks)
}

// Import handles POST /api/import requests. The body is the JSON array of
// an export file; the board is replaced by its valid entries.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var entries []service.ImportedTask
	if err := shared.DecodeJSON(r, &entries); err != nil {
		log.Warn("invalid import file", slog.String("error", err.Error()))
		HandleAPIError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err), "")
		return
	}

	result, err := h.boardService.Import(r.Context(), entries)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import tasks")
		return
	}

	log.Info("board imported",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
