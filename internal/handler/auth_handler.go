package handler

import (
	"context"
	"net/http"

	"recipe-admin/internal/model"
	"recipe-admin/internal/service"
	"recipe-admin/internal/session"
)

type profileSource interface {
	CurrentUser(ctx context.Context) (*model.User, error)
	CheckAuth(ctx context.Context) (model.AuthCheck, error)
	UserPermissions(ctx context.Context) (model.UserPermissions, error)
}

type AuthHandler struct {
	service *service.AuthService
	session *session.Store
	profile profileSource
}

func NewAuthHandler(service *service.AuthService, session *session.Store, profile profileSource) *AuthHandler {
	return &AuthHandler{service: service, session: session, profile: profile}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true, "redirect": "/login"}, nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ForgotPasswordRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.ForgotPassword(r.Context(), payload.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload model.ResetPasswordInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.ResetPassword(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, result, nil)
}

// Session reports the locally stored session; it never calls the remote API.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	h.session.CheckTokenValidity()
	writeSuccess(w, http.StatusOK, h.session.Snapshot(), nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.profile.CurrentUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

// Check asks the remote API whether the stored token is still accepted.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	check, err := h.profile.CheckAuth(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, check, nil)
}

func (h *AuthHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.profile.UserPermissions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, perms, nil)
}
