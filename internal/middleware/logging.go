package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"recipe-admin/internal/model"
)

const (
	requestIDHeader = "X-Request-ID"
	maxCapturedBody = 8 << 10
)

var redactedParams = []string{"token", "password"}

// Logging tags every request with an id and logs one line per response.
// Failed responses also carry the envelope's error code and redirect.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(started).Milliseconds(),
			"client_ip", clientAddress(r),
		}
		if rec.status >= http.StatusBadRequest {
			attrs = append(attrs, failureAttrs(r, rec)...)
		}

		switch {
		case rec.status >= http.StatusInternalServerError:
			slog.Error("request", attrs...)
		case rec.status >= http.StatusBadRequest:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

func failureAttrs(r *http.Request, rec *statusRecorder) []any {
	var attrs []any
	if r.URL.RawQuery != "" {
		attrs = append(attrs, "query", redactQuery(r.URL.Query()))
	}

	var parsed model.APIResponse
	if rec.body.Len() == 0 || json.Unmarshal(rec.body.Bytes(), &parsed) != nil || parsed.Error == nil {
		return attrs
	}

	attrs = append(attrs, "error_code", parsed.Error.Code, "error_message", parsed.Error.Message)
	if parsed.Error.Details != "" {
		attrs = append(attrs, "error_details", parsed.Error.Details)
	}
	if parsed.Error.Redirect != "" {
		attrs = append(attrs, "redirect", parsed.Error.Redirect)
	}
	return attrs
}

func redactQuery(values url.Values) string {
	for _, key := range redactedParams {
		if values.Has(key) {
			values.Set(key, "REDACTED")
		}
	}
	return values.Encode()
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	if rec.wroteHeader {
		return
	}
	rec.status = statusCode
	rec.wroteHeader = true
	rec.ResponseWriter.WriteHeader(statusCode)
}

// Write keeps a bounded copy of error bodies for failureAttrs.
func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status >= http.StatusBadRequest && rec.body.Len() < maxCapturedBody {
		rec.body.Write(b)
	}
	return rec.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the real writer, which
// http.ServeContent relies on when streaming stored images.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}
