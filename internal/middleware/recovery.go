package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"recipe-admin/internal/model"
)

// Recovery turns a handler panic into a 500 envelope and keeps serving.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			slog.Error("panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", w.Header().Get(requestIDHeader),
				"error", fmt.Sprintf("%v", recovered),
				"stack", string(debug.Stack()),
			)
			writeFailure(w, http.StatusInternalServerError, model.APIError{
				Code:    "INTERNAL_ERROR",
				Message: "Unexpected server error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}
