package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"tradejournal/src/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const serviceName = "tradejournal"

type exceptionRecorder interface {
	Create(ctx context.Context, exc *model.Exception) error
}

// AccessLog logs one line per request once the response has been written.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      status,
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("request served")
			return
		}
		entry.Info("request served")
	})
}

// Recoverer turns a handler panic into a 500 and keeps a model.Exception
// row describing it.
func Recoverer(exceptions exceptionRecorder) func(http.Handler) http.Handler {
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

				method := r.Method + " " + r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					method = r.Method + " " + rctx.RoutePattern()
				}

				exc := &model.Exception{
					Service:   serviceName,
					Module:    "http",
					Method:    method,
					RequestID: middleware.GetReqID(r.Context()),
					Message:   fmt.Sprintf("%v", rec),
					Stack:     string(debug.Stack()),
					Level:     "error",
					Context: datatypes.JSONMap{
						"path":  r.URL.Path,
						"query": r.URL.RawQuery,
					},
				}
				// the request context may already be cancelled
				if err := exceptions.Create(context.Background(), exc); err != nil {
					logger.WithError(err).WithField("method", method).Error("Failed to persist exception")
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Internal Server Error"})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
