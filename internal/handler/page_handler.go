package handler

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"recipe-admin/internal/middleware"
	"recipe-admin/internal/model"
	"recipe-admin/internal/service"
	"recipe-admin/internal/session"
	"recipe-admin/pkg/apierror"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageData struct {
	Title  string
	User   *model.SessionUser
	Error  string
	Fields model.ValidationErrors
	Data   any
}

type loginFormData struct {
	Identifier string
}

type dashboardData struct {
	RecipeCount int
	UserCount   int
}

type PageHandler struct {
	pages   map[string]*template.Template
	auth    *service.AuthService
	session *session.Store
	list    *service.RecipeList
	users   *service.UserAdmin
}

func NewPageHandler(auth *service.AuthService, session *session.Store, list *service.RecipeList, users *service.UserAdmin) (*PageHandler, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"login.html", "dashboard.html", "recipes.html", "users.html"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &PageHandler{pages: pages, auth: auth, session: session, list: list, users: users}, nil
}

func (h *PageHandler) render(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := h.pages[name]
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
	}
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", pageData{Title: "Sign in", Data: loginFormData{}})
}

func (h *PageHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		h.render(w, http.StatusBadRequest, "login.html", pageData{Title: "Sign in", Error: "invalid form", Data: loginFormData{}})
		return
	}

	identifier := strings.TrimSpace(r.PostForm.Get("identifier"))
	_, err := h.auth.Login(r.Context(), model.LoginRequest{Username: identifier, Password: r.PostForm.Get("password")})
	if err != nil {
		status, body := classifyError(err)
		data := pageData{Title: "Sign in", Error: body.Message, Data: loginFormData{Identifier: identifier}}
		var fields model.ValidationErrors
		if errors.As(err, &fields) {
			data.Fields = fields
		}
		h.render(w, status, "login.html", data)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "dashboard.html", pageData{
		Title: "Dashboard",
		User:  h.session.User(),
		Data: dashboardData{
			RecipeCount: len(h.list.State().Recipes),
			UserCount:   len(h.users.State().Users),
		},
	})
}

// Recipes refetches the list every time the page is shown.
func (h *PageHandler) Recipes(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Recipes", User: h.session.User()}
	state, err := h.list.Load(r.Context())
	if redirectOnAuthFailure(w, r, err) {
		return
	}
	if err != nil {
		data.Error = errorText(err)
	}
	data.Data = state
	h.render(w, http.StatusOK, "recipes.html", data)
}

func (h *PageHandler) Users(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Users", User: h.session.User()}
	state, err := h.users.Load(r.Context())
	if redirectOnAuthFailure(w, r, err) {
		return
	}
	if err != nil {
		data.Error = errorText(err)
	}
	data.Data = state
	h.render(w, http.StatusOK, "users.html", data)
}

// redirectOnAuthFailure sends the browser to the login page when the remote
// API rejected the session during a page load.
func redirectOnAuthFailure(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	if !apierror.Is(err, apierror.KindAuth) && !errors.Is(err, model.ErrNotAuthenticated) {
		return false
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
	return true
}

func errorText(err error) string {
	_, body := classifyError(err)
	return body.Message
}
