package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"recipe-admin/internal/model"
	"recipe-admin/internal/service"
)

type UserHandler struct {
	admin *service.UserAdmin
}

func NewUserHandler(admin *service.UserAdmin) *UserHandler {
	return &UserHandler{admin: admin}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	state := h.admin.State()
	writeSuccess(w, http.StatusOK, state, &model.Meta{Total: len(state.Users), Loading: state.Loading})
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	state, err := h.admin.Load(r.Context())
	if err != nil {
		writeErrorWithState(w, err, state)
		return
	}

	writeSuccess(w, http.StatusOK, state, &model.Meta{Total: len(state.Users)})
}

func (h *UserHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.admin.OpenCreate(), nil)
}

func (h *UserHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	state, err := h.admin.OpenEditByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, state, nil)
}

func (h *UserHandler) CloseForm(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.admin.CloseForm(), nil)
}

func (h *UserHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload model.UserFormRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	state, err := h.admin.Submit(r.Context(), payload)
	if err != nil {
		writeErrorWithState(w, err, state)
		return
	}

	writeSuccess(w, http.StatusOK, state, nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	state, err := h.admin.Delete(r.Context(), chi.URLParam(r, "id"), confirmed(r))
	if err != nil {
		writeErrorWithState(w, err, state)
		return
	}

	writeSuccess(w, http.StatusOK, state, nil)
}
