package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"recipe-admin/pkg/apierror"
)

// PathValidator maps object keys such as "recipes/<id>_<name>" to files
// under the storage root.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// ResolveKey returns the absolute file path for an object key.
func (v *PathValidator) ResolveKey(key string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	normalized = strings.TrimPrefix(normalized, "/")
	if normalized == "" {
		return "", invalidKey("object key cannot be empty", key)
	}

	if strings.Contains(normalized, "\x00") || hasControlCharacters(normalized) {
		return "", invalidKey("object key contains invalid characters", key)
	}

	for _, segment := range strings.Split(normalized, "/") {
		if segment == ".." {
			return "", apierror.New("PATH_TRAVERSAL", "path traversal attempt detected", key, http.StatusForbidden).WithKind(apierror.KindStorage)
		}
	}

	cleanRel := filepath.Clean(normalized)
	if cleanRel == "." {
		return "", invalidKey("object key cannot be empty", key)
	}

	resolvedAbs, err := filepath.Abs(filepath.Join(v.rootAbs, cleanRel))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	if resolvedAbs == v.rootAbs || !isWithinRoot(v.rootAbs, resolvedAbs) {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside storage root", key, http.StatusForbidden).WithKind(apierror.KindStorage)
	}

	return resolvedAbs, nil
}

func invalidKey(message string, key string) error {
	return apierror.New("INVALID_OBJECT_KEY", message, key, http.StatusBadRequest).WithKind(apierror.KindStorage)
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
