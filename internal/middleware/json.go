package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"recipe-admin/internal/model"
)

// writeFailure answers with the same error envelope the handlers use, so
// console clients never need to special-case middleware rejections.
func writeFailure(w http.ResponseWriter, status int, apiErr model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{Success: false, Error: &apiErr})
}

func failureBody(apiErr model.APIError) string {
	raw, err := json.Marshal(model.APIResponse{Success: false, Error: &apiErr})
	if err != nil {
		return apiErr.Message
	}
	return string(raw)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
