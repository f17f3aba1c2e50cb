package api

import (
	"log/slog"
	"net/http"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/eisenboard/eisenboard-api/internal/service"
)

// BoardHandler serves the whole-board views: lane metadata, the nested
// kanban board, statistics, overwhelm alerts and the sample board.
type BoardHandler struct {
	boardService service.BoardService
	logger       *slog.Logger
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boardService service.BoardService, logger *slog.Logger) *BoardHandler {
	if boardService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("boardService cannot be nil for BoardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BoardHandler{
		boardService: boardService,
		logger:       logger.With(slog.String("component", "board_handler")),
	}
}

// Lanes handles GET /api/lanes requests.
func (h *BoardHandler) Lanes(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, LanesResponse{
		Lanes:    domain.Lanes(),
		Statuses: domain.Statuses(),
	})
}

// Board handles GET /api/board requests.
func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.boardService.Board(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load board")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// Stats handles GET /api/stats requests.
func (h *BoardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.boardService.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Alerts handles GET /api/alerts requests with the overwhelm report.
func (h *BoardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	report, err := h.boardService.Analyze(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to analyze board")
		return
	}

	log.Debug("board analyzed", slog.Int("alerts", len(report.Alerts)))
	shared.RespondWithJSON(w, r, http.StatusOK, report)
}

// LoadSample handles POST /api/sample requests. The board is replaced by
// the demonstration tasks.
func (h *BoardHandler) LoadSample(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	tasks, err := h.boardService.LoadSample(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load sample tasks")
		return
	}

	log.Info("sample board loaded", slog.Int("tasks", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusCreated, tasks)
}

// Health handles GET /health requests. assistant may be nil.
func Health(assistant service.AssistService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
			Status:    "ok",
			AIEnabled: assistant != nil && assistant.Enabled(),
		})
	}
}
