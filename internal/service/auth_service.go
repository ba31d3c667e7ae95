package service

import (
	"context"
	"log/slog"
	"strings"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
)

type AuthGateway interface {
	Login(ctx context.Context, input model.LoginInput) (model.AuthPayload, error)
	Logout(ctx context.Context) (model.MutationResult, error)
	ForgotPassword(ctx context.Context, email string) (model.MutationResult, error)
	ResetPassword(ctx context.Context, input model.ResetPasswordInput) (model.MutationResult, error)
}

type SessionWriter interface {
	Login(user model.SessionUser, token string)
	Logout()
}

type loginForm struct {
	Identifier string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type AuthService struct {
	gw       AuthGateway
	session  SessionWriter
	notifier *event.Notifier
}

func NewAuthService(gw AuthGateway, session SessionWriter, notifier *event.Notifier) *AuthService {
	return &AuthService{gw: gw, session: session, notifier: notifier}
}

// Login exchanges credentials for a token and stores the session. The
// identifier is sent as email when it contains "@", otherwise as username.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.SessionUser, error) {
	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}

	if errs := validateForm(loginForm{Identifier: identifier, Password: req.Password}); len(errs) > 0 {
		return model.SessionUser{}, validationError(errs)
	}

	input := model.LoginInput{Password: req.Password}
	if strings.Contains(identifier, "@") {
		input.Email = identifier
	} else {
		input.Username = identifier
	}

	payload, err := s.gw.Login(ctx, input)
	if err != nil {
		s.notifier.Error("Login failed: " + errorMessage(err))
		return model.SessionUser{}, err
	}
	if payload.Token == "" {
		return model.SessionUser{}, model.ErrNotAuthenticated
	}

	s.session.Login(payload.User, payload.Token)
	s.notifier.Success("Signed in as " + payload.User.Username)
	slog.Info("operator signed in", "user_id", payload.User.ID, "role", payload.User.Role)
	return payload.User, nil
}

// Logout tells the server best-effort, then always clears the local session.
func (s *AuthService) Logout(ctx context.Context) {
	if _, err := s.gw.Logout(ctx); err != nil {
		slog.Debug("server logout failed", "error", err)
	}
	s.session.Logout()
	s.notifier.Info("Signed out")
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (model.MutationResult, error) {
	email = strings.TrimSpace(email)
	if errs := validateForm(struct {
		Email string `json:"email" validate:"required,email"`
	}{Email: email}); len(errs) > 0 {
		return model.MutationResult{}, validationError(errs)
	}

	return s.gw.ForgotPassword(ctx, email)
}

func (s *AuthService) ResetPassword(ctx context.Context, input model.ResetPasswordInput) (model.MutationResult, error) {
	if errs := validateForm(struct {
		Token    string `json:"token" validate:"required"`
		Password string `json:"password" validate:"required,min=6"`
	}{Token: input.Token, Password: input.Password}); len(errs) > 0 {
		return model.MutationResult{}, validationError(errs)
	}

	return s.gw.ResetPassword(ctx, input)
}
