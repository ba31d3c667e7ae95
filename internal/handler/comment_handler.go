package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"recipe-admin/internal/model"
	"recipe-admin/internal/service"
)

type CommentHandler struct {
	panel *service.CommentPanel
}

func NewCommentHandler(panel *service.CommentPanel) *CommentHandler {
	return &CommentHandler{panel: panel}
}

func (h *CommentHandler) State(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.panel.State(), nil)
}

// Open loads the panel for a recipe. ?visible=false models a hidden panel.
func (h *CommentHandler) Open(w http.ResponseWriter, r *http.Request) {
	visible := true
	if raw := strings.TrimSpace(r.URL.Query().Get("visible")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			visible = parsed
		}
	}

	h.respond(w)(h.panel.Open(r.Context(), chi.URLParam(r, "id"), visible))
}

func (h *CommentHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.panel.Retry(r.Context()))
}

func (h *CommentHandler) Close(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.panel.Close(), nil)
}

func (h *CommentHandler) SetDraft(w http.ResponseWriter, r *http.Request) {
	var payload model.CommentRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, h.panel.SetDraft(payload.Content), nil)
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	var payload model.CommentRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	state, err := h.panel.Add(r.Context(), payload.Content)
	if err != nil {
		writeErrorWithState(w, err, state)
		return
	}

	writeSuccess(w, http.StatusCreated, state, nil)
}

func (h *CommentHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.panel.BeginEdit(chi.URLParam(r, "commentID")))
}

func (h *CommentHandler) SetEditContent(w http.ResponseWriter, r *http.Request) {
	var payload model.CommentRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.panel.SetEditContent(payload.Content))
}

func (h *CommentHandler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.panel.SaveEdit(r.Context()))
}

func (h *CommentHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.panel.CancelEdit(), nil)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.panel.Delete(r.Context(), chi.URLParam(r, "commentID"), confirmed(r)))
}

func (h *CommentHandler) ToggleBulkMode(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.panel.ToggleBulkMode())
}

func (h *CommentHandler) Select(w http.ResponseWriter, r *http.Request) {
	var payload model.SelectRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.panel.Select(chi.URLParam(r, "commentID"), payload.Selected))
}

func (h *CommentHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var payload model.SelectRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	h.respond(w)(h.panel.SelectAll(payload.Selected))
}

func (h *CommentHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.panel.BulkDelete(r.Context(), confirmed(r)))
}

func (h *CommentHandler) respond(w http.ResponseWriter) func(service.PanelState, error) {
	return func(state service.PanelState, err error) {
		if err != nil {
			writeErrorWithState(w, err, state)
			return
		}
		writeSuccess(w, http.StatusOK, state, nil)
	}
}
