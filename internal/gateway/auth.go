package gateway

import (
	"context"

	"recipe-admin/internal/model"
)

func (c *Client) Login(ctx context.Context, input model.LoginInput) (model.AuthPayload, error) {
	var out struct {
		Login model.AuthPayload `json:"login"`
	}

	err := c.Do(ctx, opLogin, map[string]any{"input": input}, &out)
	return out.Login, err
}

func (c *Client) Register(ctx context.Context, input model.RegisterInput) (model.AuthPayload, error) {
	var out struct {
		Register model.AuthPayload `json:"register"`
	}

	err := c.Do(ctx, opRegister, map[string]any{"input": input}, &out)
	return out.Register, err
}

func (c *Client) Logout(ctx context.Context) (model.MutationResult, error) {
	var out struct {
		Logout model.MutationResult `json:"logout"`
	}

	err := c.Do(ctx, opLogout, nil, &out)
	return out.Logout, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) (model.MutationResult, error) {
	var out struct {
		ForgotPassword model.MutationResult `json:"forgotPassword"`
	}

	err := c.Do(ctx, opForgotPassword, map[string]any{"email": email}, &out)
	return out.ForgotPassword, err
}

func (c *Client) ResetPassword(ctx context.Context, input model.ResetPasswordInput) (model.MutationResult, error) {
	var out struct {
		ResetPassword model.MutationResult `json:"resetPassword"`
	}

	err := c.Do(ctx, opResetPassword, map[string]any{"input": input}, &out)
	return out.ResetPassword, err
}

func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var out struct {
		CurrentUser *model.User `json:"currentUser"`
	}

	if err := c.Do(ctx, opCurrentUser, nil, &out); err != nil {
		return nil, err
	}
	if out.CurrentUser == nil {
		return nil, model.ErrNotAuthenticated
	}
	return out.CurrentUser, nil
}

func (c *Client) CheckAuth(ctx context.Context) (model.AuthCheck, error) {
	var out struct {
		CheckAuth model.AuthCheck `json:"checkAuth"`
	}

	err := c.Do(ctx, opCheckAuth, nil, &out)
	return out.CheckAuth, err
}

func (c *Client) UserPermissions(ctx context.Context) (model.UserPermissions, error) {
	var out struct {
		UserPermissions model.UserPermissions `json:"userPermissions"`
	}

	err := c.Do(ctx, opUserPermissions, nil, &out)
	return out.UserPermissions, err
}
