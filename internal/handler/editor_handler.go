package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"recipe-admin/internal/model"
	"recipe-admin/internal/service"
	"recipe-admin/internal/store"
	"recipe-admin/pkg/apierror"
)

const multipartOverhead = 1 << 20

type recipeFetcher interface {
	Recipe(ctx context.Context, id string) (*model.Recipe, error)
}

type EditorHandler struct {
	editor        *service.RecipeEditor
	recipes       *store.RecipeStore
	fetcher       recipeFetcher
	maxUploadSize int64
}

func NewEditorHandler(editor *service.RecipeEditor, recipes *store.RecipeStore, fetcher recipeFetcher, maxUploadSize int64) *EditorHandler {
	return &EditorHandler{editor: editor, recipes: recipes, fetcher: fetcher, maxUploadSize: maxUploadSize}
}

func (h *EditorHandler) State(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.editor.State(), nil)
}

func (h *EditorHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.editor.OpenCreate(), nil)
}

// OpenEdit prefers the listed copy and falls back to fetching the recipe.
func (h *EditorHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	recipeID := strings.TrimSpace(chi.URLParam(r, "id"))
	recipe, ok := h.recipes.Get(recipeID)
	if !ok {
		fetched, err := h.fetcher.Recipe(r.Context(), recipeID)
		if err != nil {
			writeError(w, err)
			return
		}
		recipe = *fetched
	}

	writeSuccess(w, http.StatusOK, h.editor.OpenEdit(recipe), nil)
}

func (h *EditorHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	var payload model.DraftFieldsRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.SetFields(payload))
}

func (h *EditorHandler) AddIngredient(w http.ResponseWriter, r *http.Request) {
	var payload model.IngredientRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.AddIngredient(model.Ingredient(payload)))
}

func (h *EditorHandler) SetIngredient(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.IngredientRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.SetIngredient(index, model.Ingredient(payload)))
}

func (h *EditorHandler) RemoveIngredient(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.RemoveIngredient(index))
}

func (h *EditorHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	var payload model.StepRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.AddStep(payload.Text))
}

func (h *EditorHandler) SetStep(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.StepRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.SetStep(index, payload.Text))
}

func (h *EditorHandler) RemoveStep(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.RemoveStep(index))
}

func (h *EditorHandler) MoveStep(w http.ResponseWriter, r *http.Request) {
	var payload model.MoveStepRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.editor.MoveStep(payload.From, payload.To))
}

// UploadImage streams the "image" part of a multipart body to the editor.
func (h *EditorHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid multipart body", "", http.StatusBadRequest))
		return
	}

	for {
		part, nextErr := reader.NextPart()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			if isPayloadTooLarge(nextErr) {
				writeError(w, model.ErrImageTooLarge)
				return
			}
			writeError(w, apierror.New("BAD_REQUEST", "invalid multipart stream", nextErr.Error(), http.StatusBadRequest))
			return
		}

		if part.FormName() != "image" || strings.TrimSpace(part.FileName()) == "" {
			_ = part.Close()
			continue
		}

		state, uploadErr := h.editor.UploadImage(r.Context(), part.FileName(), part)
		_ = part.Close()
		if uploadErr != nil {
			writeError(w, uploadErr)
			return
		}

		writeSuccess(w, http.StatusOK, state, nil)
		return
	}

	writeError(w, apierror.New("BAD_REQUEST", "multipart field 'image' is required", "image", http.StatusBadRequest))
}

func (h *EditorHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.editor.RemoveImage(r.Context()))
}

func (h *EditorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	state, err := h.editor.Submit(r.Context())
	if err != nil {
		writeErrorWithState(w, err, state)
		return
	}

	writeSuccess(w, http.StatusOK, state, nil)
}

func (h *EditorHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.editor.Cancel(), nil)
}

func (h *EditorHandler) respond(w http.ResponseWriter) func(service.EditorState, error) {
	return func(state service.EditorState, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeSuccess(w, http.StatusOK, state, nil)
	}
}
