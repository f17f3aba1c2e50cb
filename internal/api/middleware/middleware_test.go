package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eisenboard/eisenboard-api/internal/api/shared"
	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestTrace(t *testing.T) {
	t.Run("generates trace ID", func(t *testing.T) {
		base, buf := newBufferLogger()
		var seen string
		handler := Trace(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = shared.GetTraceID(r.Context())
			logger.FromContext(r.Context()).Info("inside handler")
		}))

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/board", nil))

		assert.Len(t, seen, 32)
		assert.Equal(t, seen, rr.Header().Get(shared.TraceIDHeader))
		assert.Contains(t, buf.String(), `"trace_id":"`+seen+`"`)
		assert.Contains(t, buf.String(), "inside handler")
	})

	t.Run("reuses client trace ID", func(t *testing.T) {
		base, _ := newBufferLogger()
		var seen string
		handler := Trace(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = shared.GetTraceID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
		req.Header.Set(shared.TraceIDHeader, "cli-0000-trace")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, "cli-0000-trace", seen)
		assert.Equal(t, "cli-0000-trace", rr.Header().Get(shared.TraceIDHeader))
	})
}

func TestRequestLogger(t *testing.T) {
	base, buf := newBufferLogger()
	handler := Trace(base)(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("{}"))
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/tasks/quick", nil))

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, `"status":503`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"path":"/api/tasks/quick"`)
}
