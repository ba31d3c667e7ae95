package store

import (
	"sync"

	"recipe-admin/internal/model"
)

// RecipeStore holds the baseline recipe list shown when no search is active.
type RecipeStore struct {
	mu      sync.RWMutex
	recipes []model.Recipe
	loading bool
	err     error
}

func NewRecipeStore() *RecipeStore {
	return &RecipeStore{recipes: []model.Recipe{}}
}

func (s *RecipeStore) SetRecipes(recipes []model.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recipes = append([]model.Recipe(nil), recipes...)
	if s.recipes == nil {
		s.recipes = []model.Recipe{}
	}
}

func (s *RecipeStore) AddRecipe(recipe model.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, recipe)
}

// UpdateRecipe merges the non-zero fields of patch into the recipe with id.
func (s *RecipeStore) UpdateRecipe(id string, patch model.Recipe) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipes {
		if s.recipes[i].ID == id {
			s.recipes[i] = MergeRecipe(s.recipes[i], patch)
			return true
		}
	}
	return false
}

// ReplaceRecipe stores an update response as the new record. Editable fields
// are taken as returned, empty values included. Author and timestamps the
// response left out are kept from the stored record.
func (s *RecipeStore) ReplaceRecipe(id string, updated model.Recipe) (model.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipes {
		if s.recipes[i].ID != id {
			continue
		}
		out := updated
		out.ID = id
		out.Ingredients = append([]model.Ingredient(nil), updated.Ingredients...)
		if out.Author == (model.Author{}) {
			out.Author = s.recipes[i].Author
		}
		if out.CreatedAt == "" {
			out.CreatedAt = s.recipes[i].CreatedAt
		}
		if out.UpdatedAt == "" {
			out.UpdatedAt = s.recipes[i].UpdatedAt
		}
		s.recipes[i] = out
		return out, true
	}
	return updated, false
}

func (s *RecipeStore) DeleteRecipe(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recipes {
		if s.recipes[i].ID == id {
			s.recipes = append(s.recipes[:i:i], s.recipes[i+1:]...)
			return true
		}
	}
	return false
}

func (s *RecipeStore) Recipes() []model.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Recipe{}, s.recipes...)
}

func (s *RecipeStore) Get(id string) (model.Recipe, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return model.Recipe{}, false
}

func (s *RecipeStore) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

func (s *RecipeStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *RecipeStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RecipeStore) Error() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// MergeRecipe overlays the set fields of patch onto base.
func MergeRecipe(base model.Recipe, patch model.Recipe) model.Recipe {
	out := base
	if patch.ID != "" {
		out.ID = patch.ID
	}
	if patch.Title != "" {
		out.Title = patch.Title
	}
	if patch.Description != "" {
		out.Description = patch.Description
	}
	if patch.Ingredients != nil {
		out.Ingredients = append([]model.Ingredient(nil), patch.Ingredients...)
	}
	if patch.Steps.Kind != model.StepsAbsent {
		out.Steps = patch.Steps
	}
	if patch.ImageURL != "" {
		out.ImageURL = patch.ImageURL
	}
	if patch.CookingTime != 0 {
		out.CookingTime = patch.CookingTime
	}
	if patch.Difficulty != "" {
		out.Difficulty = patch.Difficulty
	}
	if patch.Author != (model.Author{}) {
		out.Author = patch.Author
	}
	if patch.CreatedAt != "" {
		out.CreatedAt = patch.CreatedAt
	}
	if patch.UpdatedAt != "" {
		out.UpdatedAt = patch.UpdatedAt
	}
	return out
}
