package util

import (
	"net/http"
	"path"
	"regexp"
	"strings"
	"unicode"

	"recipe-admin/pkg/apierror"
)

var unsafeObjectChars = regexp.MustCompile(`[<>:"/\\|?*#%&{}$!'@+=` + "`" + `]`)

const maxObjectNameRunes = 120

// SanitizeObjectName turns an uploaded file name into a safe storage object
// name: directory parts dropped, invisible and reserved characters removed,
// whitespace collapsed to underscores and the length bounded by runes.
func SanitizeObjectName(name string) (string, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	trimmed = path.Base(trimmed)
	if trimmed == "" || trimmed == "." || trimmed == "/" || trimmed == ".." {
		return "", invalidName("file name cannot be empty", name)
	}

	builder := strings.Builder{}
	builder.Grow(len(trimmed))
	lastUnderscore := false
	for _, char := range trimmed {
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}
		if unicode.IsSpace(char) {
			if !lastUnderscore {
				builder.WriteRune('_')
				lastUnderscore = true
			}
			continue
		}
		builder.WriteRune(char)
		lastUnderscore = char == '_'
	}

	cleaned := unsafeObjectChars.ReplaceAllString(builder.String(), "_")
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "", invalidName("file name is invalid after sanitization", name)
	}

	ext := strings.ToLower(path.Ext(cleaned))
	stem := strings.TrimSuffix(cleaned, path.Ext(cleaned))
	runes := []rune(stem)
	if limit := maxObjectNameRunes - len([]rune(ext)); len(runes) > limit && limit > 0 {
		runes = runes[:limit]
	}

	return string(runes) + ext, nil
}

func invalidName(message string, name string) error {
	return apierror.New("INVALID_FILENAME", message, name, http.StatusBadRequest).WithKind(apierror.KindValidation)
}

func isInvisibleUnicode(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F', '\u2060', '\uFEFF':
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
