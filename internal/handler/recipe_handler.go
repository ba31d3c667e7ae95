package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"recipe-admin/internal/model"
	"recipe-admin/internal/service"
	"recipe-admin/internal/store"
	"recipe-admin/pkg/apierror"
)

type RecipeHandler struct {
	list    *service.RecipeList
	recipes *store.RecipeStore
}

func NewRecipeHandler(list *service.RecipeList, recipes *store.RecipeStore) *RecipeHandler {
	return &RecipeHandler{list: list, recipes: recipes}
}

func listMeta(state service.ListState) *model.Meta {
	return &model.Meta{Total: len(state.Recipes), Searching: state.Searching, Loading: state.Loading || state.LoadingSearch}
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	state := h.list.State()
	writeSuccess(w, http.StatusOK, state, listMeta(state))
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipeID := strings.TrimSpace(chi.URLParam(r, "id"))
	if recipeID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "recipe id is required", "id", http.StatusBadRequest))
		return
	}

	recipe, ok := h.recipes.Get(recipeID)
	if !ok {
		writeError(w, model.ErrRecipeNotFound)
		return
	}

	writeSuccess(w, http.StatusOK, recipe, nil)
}

func (h *RecipeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	state, err := h.list.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, state, listMeta(state))
}

// SetSearch records the typed text; the query itself runs after the debounce.
func (h *RecipeHandler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var payload model.SearchRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	state := h.list.SetSearchText(payload.Text)
	writeSuccess(w, http.StatusAccepted, state, listMeta(state))
}

// SearchNow bypasses the debounce, as pressing enter in the search box does.
func (h *RecipeHandler) SearchNow(w http.ResponseWriter, r *http.Request) {
	var payload model.SearchRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	state, err := h.list.Search(r.Context(), payload.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, state, listMeta(state))
}

func (h *RecipeHandler) ClearSearch(w http.ResponseWriter, r *http.Request) {
	state := h.list.ClearSearch()
	writeSuccess(w, http.StatusOK, state, listMeta(state))
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipeID := strings.TrimSpace(chi.URLParam(r, "id"))
	if recipeID == "" {
		writeError(w, apierror.New("BAD_REQUEST", "recipe id is required", "id", http.StatusBadRequest))
		return
	}

	state, err := h.list.Delete(r.Context(), recipeID, confirmed(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, state, listMeta(state))
}
