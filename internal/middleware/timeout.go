package middleware

import (
	"net/http"
	"time"

	"recipe-admin/internal/model"
)

// Timeout bounds a request. JSON routes get the error envelope, pages a
// plain message.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	apiMessage := failureBody(model.APIError{Code: "REQUEST_TIMEOUT", Message: "request timed out"})
	pageMessage := "The request took too long. Please try again."

	return func(next http.Handler) http.Handler {
		api := http.TimeoutHandler(next, timeout, apiMessage)
		page := http.TimeoutHandler(next, timeout, pageMessage)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isAPIPath(r.URL.Path) {
				api.ServeHTTP(w, r)
				return
			}
			page.ServeHTTP(w, r)
		})
	}
}
