package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Session related errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("forbidden")

	// Editor / panel state errors
	ErrEditorClosed     = errors.New("editor is not open")
	ErrEditorBusy       = errors.New("editor is busy")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrPanelClosed      = errors.New("panel is not open")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrRecipeNotFound   = errors.New("recipe not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrNothingSelected  = errors.New("nothing selected")
	ErrNotEditing       = errors.New("no comment is being edited")
	ErrEmptyContent     = errors.New("content is empty")
	ErrMissingRecipeID  = errors.New("recipe id is required")
	ErrUnsupportedImage = errors.New("only image files can be uploaded")
	ErrImageTooLarge    = errors.New("image exceeds the upload size limit")
	ErrStateNotFound    = errors.New("persisted state not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationErrors maps a field path (e.g. "ingredients[0].unit") to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Has(field string) bool {
	_, ok := v[field]
	return ok
}
