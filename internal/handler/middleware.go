package handler

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
)

// Logging logs one line per request through logger.
func Logging(logger hclog.Logger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&requestLogger{logger: logger.Named("http")})
}

type requestLogger struct {
	logger hclog.Logger
}

func (l *requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		logger: l.logger.With(
			"method", r.Method,
			"uri", r.RequestURI,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type requestLogEntry struct {
	logger hclog.Logger
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	e.logger.Info("request", "status", status, "bytes", bytes, "elapsed", elapsed)
}

func (e *requestLogEntry) Panic(v any, stack []byte) {
	e.logger.Error("panic", "value", v, "stack", string(stack))
}

// Recovery turns a handler panic into a 500 JSON error.
func Recovery(logger hclog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if entry, ok := middleware.GetLogEntry(r).(*requestLogEntry); ok {
					entry.Panic(rec, debug.Stack())
				} else {
					logger.Error("panic", "method", r.Method, "uri", r.RequestURI, "value", rec)
				}
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
