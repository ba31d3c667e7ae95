package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-admin/internal/model"
	"recipe-admin/pkg/apierror"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		status   int
		code     string
		redirect string
	}{
		{name: "remote session expired", err: apierror.New("UNAUTHENTICATED", "session expired", "", http.StatusUnauthorized).WithKind(apierror.KindAuth), status: http.StatusUnauthorized, code: "UNAUTHENTICATED", redirect: "/login"},
		{name: "network error below 500", err: apierror.New("NETWORK_ERROR", "unreachable", "", http.StatusBadRequest).WithKind(apierror.KindNetwork), status: http.StatusBadGateway, code: "NETWORK_ERROR"},
		{name: "breaker open keeps 503", err: apierror.New("API_UNAVAILABLE", "down", "", http.StatusServiceUnavailable).WithKind(apierror.KindNetwork), status: http.StatusServiceUnavailable, code: "API_UNAVAILABLE"},
		{name: "not authenticated sentinel", err: model.ErrNotAuthenticated, status: http.StatusUnauthorized, code: "UNAUTHENTICATED", redirect: "/login"},
		{name: "forbidden", err: fmt.Errorf("delete: %w", model.ErrForbidden), status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "missing recipe", err: model.ErrRecipeNotFound, status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "editor busy", err: model.ErrEditorBusy, status: http.StatusConflict, code: "INVALID_STATE"},
		{name: "empty comment", err: model.ErrEmptyContent, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "unsupported image", err: model.ErrUnsupportedImage, status: http.StatusUnsupportedMediaType, code: "UNSUPPORTED_IMAGE"},
		{name: "too large", err: &http.MaxBytesError{Limit: 10}, status: http.StatusRequestEntityTooLarge, code: "IMAGE_TOO_LARGE"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := classifyError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.redirect, body.Redirect)
		})
	}
}

func TestClassifyErrorCarriesFields(t *testing.T) {
	status, body := classifyError(model.ValidationErrors{"title": "title is required"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_FAILED", body.Code)
	assert.Equal(t, "title is required", body.Fields["title"])
}

func TestConfirmed(t *testing.T) {
	query := httptest.NewRequest(http.MethodDelete, "/api/v1/recipes/r1?confirm=true", nil)
	assert.True(t, confirmed(query))

	header := httptest.NewRequest(http.MethodDelete, "/api/v1/recipes/r1", nil)
	header.Header.Set("X-Confirm", " 1 ")
	assert.True(t, confirmed(header))

	plain := httptest.NewRequest(http.MethodDelete, "/api/v1/recipes/r1?confirm=maybe", nil)
	assert.False(t, confirmed(plain))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Text string `json:"text"`
	}

	rec := httptest.NewRecorder()
	require.NoError(t, decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`)), &dst))
	assert.Equal(t, "hi", dst.Text)

	require.NoError(t, decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", http.NoBody), &dst))

	err := decodeJSON(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":`)), &dst)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidation))
}

func TestPathIndex(t *testing.T) {
	index, err := pathIndex(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	_, err = pathIndex("two")
	assert.Error(t, err)
}
