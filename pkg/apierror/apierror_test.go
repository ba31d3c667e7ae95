package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPIErrorFormatting(t *testing.T) {
	t.Parallel()

	err := New("BAD_REQUEST", "invalid input", "title", http.StatusBadRequest)
	require.Equal(t, "BAD_REQUEST: invalid input (title)", err.Error())

	plain := New("NOT_FOUND", "recipe not found", "", http.StatusNotFound)
	require.Equal(t, "NOT_FOUND: recipe not found", plain.Error())

	var nilErr *APIError
	require.Equal(t, "", nilErr.Error())
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	authErr := New("UNAUTHENTICATED", "session expired", "", http.StatusUnauthorized).WithKind(KindAuth)
	wrapped := fmt.Errorf("load recipes: %w", authErr)

	require.Equal(t, KindAuth, KindOf(wrapped))
	require.True(t, Is(wrapped, KindAuth))
	require.False(t, Is(wrapped, KindNetwork))
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.False(t, Is(nil, KindInternal))
}

func TestUnwrapCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := New("NETWORK_ERROR", "api unreachable", "", http.StatusBadGateway).WithKind(KindNetwork).WithCause(cause)

	require.ErrorIs(t, err, cause)
}
