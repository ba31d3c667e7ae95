package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"recipe-admin/internal/middleware"
	"recipe-admin/internal/model"
	"recipe-admin/pkg/apierror"
)

const maxJSONBody = 1 << 20

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status, body := classifyError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// writeErrorWithState returns the failure together with the state it left
// behind, so a rejected form can be redrawn with its field messages.
func writeErrorWithState(w http.ResponseWriter, err error, state any) {
	status, body := classifyError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Data:    state,
		Error:   body,
	})
}

func classifyError(err error) (int, *model.APIError) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var fields model.ValidationErrors
	if errors.As(err, &fields) {
		body.Fields = fields
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
		switch apiErr.Kind {
		case apierror.KindAuth:
			status = http.StatusUnauthorized
			body.Redirect = middleware.LoginPath
		case apierror.KindNetwork:
			if status < 500 {
				status = http.StatusBadGateway
			}
		}
		return status, body
	}

	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHENTICATED"
		body.Message = "Authentication required"
		body.Redirect = middleware.LoginPath
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	case errors.Is(err, model.ErrRecipeNotFound),
		errors.Is(err, model.ErrCommentNotFound),
		errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = err.Error()
	case errors.Is(err, model.ErrEditorClosed),
		errors.Is(err, model.ErrEditorBusy),
		errors.Is(err, model.ErrPanelClosed),
		errors.Is(err, model.ErrNotEditing):
		status = http.StatusConflict
		body.Code = "INVALID_STATE"
		body.Message = err.Error()
	case errors.Is(err, model.ErrEmptyContent),
		errors.Is(err, model.ErrMissingRecipeID),
		errors.Is(err, model.ErrNothingSelected),
		errors.Is(err, model.ErrIndexOutOfRange),
		errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = err.Error()
	case errors.Is(err, model.ErrUnsupportedImage):
		status = http.StatusUnsupportedMediaType
		body.Code = "UNSUPPORTED_IMAGE"
		body.Message = err.Error()
	case errors.Is(err, model.ErrImageTooLarge), isPayloadTooLarge(err):
		status = http.StatusRequestEntityTooLarge
		body.Code = "IMAGE_TOO_LARGE"
		body.Message = "image exceeds the upload size limit"
	case fields != nil:
		status = http.StatusUnprocessableEntity
		body.Code = "VALIDATION_FAILED"
		body.Message = "please fix the highlighted fields"
	default:
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	return status, body
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// decodeJSON reads a bounded JSON body. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apierror.New("BAD_REQUEST", "invalid JSON body", err.Error(), http.StatusBadRequest).WithKind(apierror.KindValidation)
	}

	return nil
}

// confirmed reports whether the operator already accepted the confirmation
// prompt, either through ?confirm=true or an X-Confirm header.
func confirmed(r *http.Request) bool {
	if v, err := strconv.ParseBool(r.URL.Query().Get("confirm")); err == nil && v {
		return true
	}
	v, err := strconv.ParseBool(strings.TrimSpace(r.Header.Get("X-Confirm")))
	return err == nil && v
}

func pathIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, apierror.New("BAD_REQUEST", "index must be a number", raw, http.StatusBadRequest).WithKind(apierror.KindValidation)
	}
	return index, nil
}
