package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/eisenboard/eisenboard-api/internal/platform/logger"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per completed request with its status,
// size and duration. Server errors log at WARN, everything else at INFO.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		logger.FromContext(r.Context()).LogAttrs(r.Context(), level, "request completed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())))
	})
}
