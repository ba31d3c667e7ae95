package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"recipe-admin/pkg/apierror"
)

func TestPathValidatorResolveKey(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	validator, err := NewPathValidator(root)
	require.NoError(t, err)

	t.Run("object key resolves inside root", func(t *testing.T) {
		resolved, resolveErr := validator.ResolveKey("recipes/abc_pho.jpg")
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "recipes", "abc_pho.jpg"), resolved)
	})

	t.Run("leading slash and backslashes are normalized", func(t *testing.T) {
		resolved, resolveErr := validator.ResolveKey(`/recipes\abc.png`)
		require.NoError(t, resolveErr)
		require.Equal(t, filepath.Join(validator.RootAbs(), "recipes", "abc.png"), resolved)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		for _, key := range []string{"", "/", " ", "."} {
			_, resolveErr := validator.ResolveKey(key)
			require.Error(t, resolveErr, key)
		}
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("recipes/../../secrets.txt")
		require.Error(t, resolveErr)
		require.True(t, apierror.Is(resolveErr, apierror.KindStorage))
	})

	t.Run("control characters are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("recipes\nphoto.jpg")
		require.Error(t, resolveErr)
	})

	t.Run("null bytes are rejected", func(t *testing.T) {
		_, resolveErr := validator.ResolveKey("recipes\x00/photo.jpg")
		require.Error(t, resolveErr)
	})

	t.Run("sibling directory with shared prefix is outside root", func(t *testing.T) {
		require.False(t, isWithinRoot(`/tmp/root`, `/tmp/rootless/file.txt`))
		require.True(t, isWithinRoot(`/tmp/root`, `/tmp/root/recipes/file.txt`))
	})
}
