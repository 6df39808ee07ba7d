package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/prooflens/prooflens/internal/metrics"
	"github.com/prooflens/prooflens/internal/observability"
)

// Recovery middleware recovers from handler panics, logs the stack, and
// answers with a generic 500. The response is written directly here rather
// than through the errors package to keep the import graph acyclic.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				metrics.RecordPanic()

				if observability.ServerLogger != nil {
					observability.ServerLogger.Error("panic recovered",
						zap.Any("panic", rec),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", GetRequestID(r.Context())),
						zap.ByteString("stack", debug.Stack()))
				}

				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(struct {
					Error string `json:"error"`
				}{Error: "internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
