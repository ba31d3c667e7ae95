package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"recipe-admin/internal/model"
	"recipe-admin/internal/util"
	"recipe-admin/pkg/apierror"
)

const RecipePrefix = "recipes/"

// ObjectStore is the image storage collaborator used by the recipe editor.
type ObjectStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (model.UploadedImage, error)
	Delete(ctx context.Context, key string) error
	DeleteByURL(ctx context.Context, rawURL string) error
}

// Storage keeps objects as files under a root directory and hands out
// download URLs of the form <public>/o/<escaped key>?alt=media&token=<uuid>.
type Storage struct {
	validator *PathValidator
	publicURL string
	maxSize   int64
}

func New(root string, publicURL string, maxSize int64) (*Storage, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Storage{
		validator: validator,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxSize:   maxSize,
	}, nil
}

func (s *Storage) RootAbs() string {
	return s.validator.RootAbs()
}

func (s *Storage) Upload(ctx context.Context, name string, r io.Reader) (model.UploadedImage, error) {
	safeName, err := util.SanitizeObjectName(name)
	if err != nil {
		return model.UploadedImage{}, err
	}

	key := RecipePrefix + uuid.NewString() + "_" + safeName
	resolved, err := s.validator.ResolveKey(key)
	if err != nil {
		return model.UploadedImage{}, err
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return model.UploadedImage{}, storageError("UPLOAD_FAILED", "failed to prepare storage", err)
	}

	if err := ctx.Err(); err != nil {
		return model.UploadedImage{}, storageError("UPLOAD_FAILED", "upload canceled", err)
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return model.UploadedImage{}, storageError("UPLOAD_FAILED", "failed to create object", err)
	}

	mimeType, reader, err := util.SniffMIME(r)
	if err != nil {
		_ = file.Close()
		_ = os.Remove(resolved)
		return model.UploadedImage{}, storageError("UPLOAD_FAILED", "failed to read upload", err)
	}
	// The bucket only holds recipe images.
	if !util.IsImageMIME(mimeType) && !util.IsImageExtension(path.Ext(safeName)) {
		_ = file.Close()
		_ = os.Remove(resolved)
		return model.UploadedImage{}, apierror.New("UNSUPPORTED_IMAGE", "only image files can be stored", safeName, http.StatusUnsupportedMediaType).
			WithKind(apierror.KindValidation).WithCause(model.ErrUnsupportedImage)
	}
	if s.maxSize > 0 {
		reader = io.LimitReader(reader, s.maxSize+1)
	}

	written, copyErr := io.Copy(file, reader)
	closeErr := file.Close()

	if copyErr == nil && s.maxSize > 0 && written > s.maxSize {
		copyErr = model.ErrImageTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(resolved)
		if errors.Is(copyErr, model.ErrImageTooLarge) {
			return model.UploadedImage{}, apierror.New("IMAGE_TOO_LARGE", copyErr.Error(), safeName, http.StatusRequestEntityTooLarge).WithKind(apierror.KindValidation).WithCause(copyErr)
		}
		return model.UploadedImage{}, storageError("UPLOAD_FAILED", "failed to write object", copyErr)
	}

	slog.Info("object uploaded", "key", key, "bytes", written)
	return model.UploadedImage{URL: s.URLFor(key), StoragePath: key}, nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}

	resolved, err := s.validator.ResolveKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storageError("OBJECT_NOT_FOUND", "object does not exist", err)
		}
		return storageError("DELETE_FAILED", "failed to delete object", err)
	}

	slog.Info("object deleted", "key", key)
	return nil
}

// DeleteByURL deletes the object behind a download URL. URLs that were not
// issued by this store are skipped.
func (s *Storage) DeleteByURL(ctx context.Context, rawURL string) error {
	key, ok := s.KeyFromURL(rawURL)
	if !ok {
		slog.Debug("not a storage url, skipping delete", "url", rawURL)
		return nil
	}
	return s.Delete(ctx, key)
}

func (s *Storage) URLFor(key string) string {
	return s.publicURL + "/o/" + url.PathEscape(key) + "?alt=media&token=" + uuid.NewString()
}

// KeyFromURL extracts the object key from a download URL issued by this store.
func (s *Storage) KeyFromURL(rawURL string) (string, bool) {
	if rawURL == "" || !strings.HasPrefix(rawURL, s.publicURL+"/o/") {
		return "", false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return "", false
	}

	escaped := parsed.EscapedPath()
	idx := strings.Index(escaped, "/o/")
	if idx < 0 {
		return "", false
	}

	key, err := url.PathUnescape(escaped[idx+len("/o/"):])
	if err != nil || key == "" {
		return "", false
	}

	return key, true
}

// Open returns the object file for serving.
func (s *Storage) Open(key string) (*os.File, fs.FileInfo, error) {
	resolved, err := s.validator.ResolveKey(key)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, storageError("OBJECT_NOT_FOUND", "object does not exist", err)
		}
		return nil, nil, storageError("READ_FAILED", "failed to open object", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, storageError("READ_FAILED", "failed to stat object", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, nil, storageError("OBJECT_NOT_FOUND", "object does not exist", fs.ErrNotExist)
	}

	return file, info, nil
}

func storageError(code string, message string, cause error) *apierror.APIError {
	status := http.StatusInternalServerError
	if errors.Is(cause, fs.ErrNotExist) {
		status = http.StatusNotFound
	}
	return apierror.New(code, message, "", status).WithKind(apierror.KindStorage).WithCause(cause)
}
