package handler

import (
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/go-chi/chi/v5"

	"recipe-admin/internal/storage"
	"recipe-admin/pkg/apierror"
)

type StorageHandler struct {
	store *storage.Storage
}

func NewStorageHandler(store *storage.Storage) *StorageHandler {
	return &StorageHandler{store: store}
}

// Object serves an uploaded image at /storage/o/<escaped key>, the shape the
// download URLs handed out by Upload point at.
func (h *StorageHandler) Object(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		writeError(w, apierror.New("BAD_REQUEST", "invalid object key", "", http.StatusBadRequest))
		return
	}

	file, info, err := h.store.Open(key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	filename := path.Base(key)
	if contentType := mime.TypeByExtension(path.Ext(filename)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	http.ServeContent(w, r, filename, info.ModTime(), file)
}
