package gateway

import (
	"context"

	"recipe-admin/internal/model"
)

func (c *Client) Recipes(ctx context.Context, search model.RecipeSearch) ([]model.Recipe, error) {
	var out struct {
		Recipes []model.Recipe `json:"recipes"`
	}

	vars := map[string]any{
		"search": search.Search,
		"limit":  search.Limit,
		"offset": search.Offset,
	}
	if err := c.Do(ctx, opRecipes, vars, &out); err != nil {
		return nil, err
	}

	if out.Recipes == nil {
		out.Recipes = []model.Recipe{}
	}
	return out.Recipes, nil
}

func (c *Client) Recipe(ctx context.Context, id string) (*model.Recipe, error) {
	var out struct {
		Recipe *model.Recipe `json:"recipe"`
	}

	if err := c.Do(ctx, opRecipe, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Recipe == nil {
		return nil, model.ErrRecipeNotFound
	}
	return out.Recipe, nil
}

func (c *Client) CreateRecipe(ctx context.Context, input model.RecipeInput) (model.Recipe, error) {
	var out struct {
		CreateRecipe model.Recipe `json:"createRecipe"`
	}

	err := c.Do(ctx, opCreateRecipe, map[string]any{"input": input}, &out)
	return out.CreateRecipe, err
}

func (c *Client) UpdateRecipe(ctx context.Context, id string, input model.RecipeInput) (model.Recipe, error) {
	var out struct {
		UpdateRecipe model.Recipe `json:"updateRecipe"`
	}

	err := c.Do(ctx, opUpdateRecipe, map[string]any{"id": id, "input": input}, &out)
	return out.UpdateRecipe, err
}

func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.Do(ctx, opDeleteRecipe, map[string]any{"id": id}, nil)
}
