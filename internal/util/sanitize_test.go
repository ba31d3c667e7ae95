package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSanitizeObjectName(t *testing.T) {
	t.Parallel()

	t.Run("keeps a plain name", func(t *testing.T) {
		actual, err := SanitizeObjectName("pho.jpg")
		require.NoError(t, err)
		require.Equal(t, "pho.jpg", actual)
	})

	t.Run("drops directories and collapses spaces", func(t *testing.T) {
		actual, err := SanitizeObjectName(`C:\photos\bún  bò Huế.PNG`)
		require.NoError(t, err)
		require.Equal(t, "bún_bò_Huế.png", actual)
	})

	t.Run("replaces reserved characters", func(t *testing.T) {
		actual, err := SanitizeObjectName("dish<1>?.webp")
		require.NoError(t, err)
		require.Equal(t, "dish_1__.webp", actual)
	})

	t.Run("strips invisible characters", func(t *testing.T) {
		actual, err := SanitizeObjectName("ca\u200Bnh\uFEFF.jpg")
		require.NoError(t, err)
		require.Equal(t, "canh.jpg", actual)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := SanitizeObjectName("   ")
		require.Error(t, err)

		_, err = SanitizeObjectName("\u200B\u200C")
		require.Error(t, err)
	})

	t.Run("bounds length by runes", func(t *testing.T) {
		input := strings.Repeat("é", 300) + ".jpg"
		actual, err := SanitizeObjectName(input)
		require.NoError(t, err)
		require.LessOrEqual(t, utf8.RuneCountInString(actual), maxObjectNameRunes)
		require.True(t, strings.HasSuffix(actual, ".jpg"))
		require.True(t, utf8.ValidString(actual))
	})
}
