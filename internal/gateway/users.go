package gateway

import (
	"context"

	"recipe-admin/internal/model"
)

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var out struct {
		Users []model.User `json:"users"`
	}

	if err := c.Do(ctx, opUsers, nil, &out); err != nil {
		return nil, err
	}
	if out.Users == nil {
		out.Users = []model.User{}
	}
	return out.Users, nil
}

// CreateUser provisions an account through the register mutation.
func (c *Client) CreateUser(ctx context.Context, input model.RegisterInput) (model.AuthPayload, error) {
	return c.Register(ctx, input)
}

func (c *Client) UpdateUser(ctx context.Context, id string, input model.UpdateUserInput) (model.User, error) {
	var out struct {
		UpdateUser model.User `json:"updateUser"`
	}

	err := c.Do(ctx, opUpdateUser, map[string]any{"id": id, "input": input}, &out)
	return out.UpdateUser, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) (model.MutationResult, error) {
	var out struct {
		DeleteUser model.MutationResult `json:"deleteUser"`
	}

	err := c.Do(ctx, opDeleteUser, map[string]any{"id": id}, &out)
	return out.DeleteUser, err
}
