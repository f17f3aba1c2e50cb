package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/domain"
	"github.com/eisenboard/eisenboard-api/internal/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestRouter mounts the handlers the same way the server does.
func newTestRouter(boards *mocks.MockBoardService, assistant *mocks.MockAssistService) http.Handler {
	if boards == nil {
		boards = &mocks.MockBoardService{}
	}
	if assistant == nil {
		assistant = &mocks.MockAssistService{}
	}
	log := discardLogger()

	tasks := NewTaskHandler(boards, log)
	board := NewBoardHandler(boards, log)
	transfer := NewTransferHandler(boards, log)
	assist := NewAssistHandler(assistant, log)

	r := chi.NewRouter()
	r.Get("/health", Health(assistant))
	r.Route("/api", func(r chi.Router) {
		r.Get("/lanes", board.Lanes)
		r.Get("/board", board.Board)
		r.Get("/stats", board.Stats)
		r.Get("/alerts", board.Alerts)
		r.Post("/sample", board.LoadSample)

		r.Get("/tasks", tasks.ListTasks)
		r.Post("/tasks", tasks.CreateTask)
		r.Delete("/tasks", tasks.ClearAll)
		r.Post("/tasks/quick", tasks.QuickAdd)
		r.Post("/tasks/categorize", assist.CategorizeAndAdd)
		r.Get("/tasks/{id}", tasks.GetTask)
		r.Patch("/tasks/{id}", tasks.UpdateTask)
		r.Delete("/tasks/{id}", tasks.DeleteTask)
		r.Post("/tasks/{id}/move", tasks.MoveTask)
		r.Post("/tasks/{id}/toggle", tasks.ToggleExpanded)
		r.Post("/tasks/{id}/breakdown", assist.Breakdown)
		r.Post("/tasks/{id}/expand", assist.Expand)

		r.Get("/jobs/{id}", assist.GetJob)
		r.Post("/categorize", assist.Categorize)
		r.Post("/ai", assist.Proxy)
		r.Get("/export", transfer.Export)
		r.Post("/import", transfer.Import)
	})
	return r
}

// do sends a request with an optional JSON body through handler.
func do(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// decode unmarshals the recorded body into v.
func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body: %s", rr.Body.String())
}

// errorMessage returns the "error" field of a JSON error response.
func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	decode(t, rr, &body)
	msg, _ := body["error"].(string)
	return msg
}

func sampleTask(title string, lane domain.Lane) *domain.Task {
	now := time.Date(2024, time.March, 7, 9, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:        uuid.New(),
		Title:     title,
		Lane:      lane,
		Status:    domain.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
