package gateway

import (
	"context"

	"recipe-admin/internal/model"
)

func (c *Client) RecipeComments(ctx context.Context, recipeID string) ([]model.Comment, error) {
	var out struct {
		RecipeComments []model.Comment `json:"recipeComments"`
	}

	if err := c.Do(ctx, opRecipeComments, map[string]any{"recipeId": recipeID}, &out); err != nil {
		return nil, err
	}
	if out.RecipeComments == nil {
		out.RecipeComments = []model.Comment{}
	}
	return out.RecipeComments, nil
}

func (c *Client) AddComment(ctx context.Context, recipeID string, content string) (model.Comment, error) {
	var out struct {
		AddComment model.Comment `json:"addComment"`
	}

	err := c.Do(ctx, opAddComment, map[string]any{"recipeId": recipeID, "content": content}, &out)
	return out.AddComment, err
}

func (c *Client) UpdateComment(ctx context.Context, id string, content string) (model.Comment, error) {
	var out struct {
		UpdateComment model.Comment `json:"updateComment"`
	}

	err := c.Do(ctx, opUpdateComment, map[string]any{"id": id, "content": content}, &out)
	return out.UpdateComment, err
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.Do(ctx, opDeleteComment, map[string]any{"id": id}, nil)
}

func (c *Client) DeleteMultipleComments(ctx context.Context, ids []string) error {
	return c.Do(ctx, opDeleteMultipleComments, map[string]any{"commentIds": ids}, nil)
}
