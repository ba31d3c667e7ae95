package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       StepsField   `json:"steps"`
	ImageURL    string       `json:"imageUrl,omitempty"`
	CookingTime int          `json:"cookingTime,omitempty"`
	Difficulty  Difficulty   `json:"difficulty,omitempty"`
	Author      Author       `json:"author"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
}

// UnmarshalJSON drops an ingredients value that is not an array, since the
// upstream shape is not guaranteed.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	aux := struct {
		*plain
		Ingredients json.RawMessage `json:"ingredients"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Ingredients = nil
	trimmed := bytes.TrimSpace(aux.Ingredients)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []Ingredient
		if err := json.Unmarshal(trimmed, &items); err == nil {
			r.Ingredients = items
		}
	}

	return nil
}

type Ingredient struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
}

// Quantity accepts a JSON number or string and always encodes as a string.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*q = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*q = Quantity(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*q = Quantity(n.String())
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(q))
}

func QuantityFromFloat(v float64) Quantity {
	return Quantity(strconv.FormatFloat(v, 'f', -1, 64))
}

// Author is either a bare username or a user object, depending on the document.
type Author struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (a *Author) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Author{}
		return nil
	}

	if trimmed[0] == '"' {
		var username string
		if err := json.Unmarshal(trimmed, &username); err != nil {
			return err
		}
		*a = Author{Username: username}
		return nil
	}

	type plain Author
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*a = Author(p)
	return nil
}

func (a Author) DisplayName() string {
	if strings.TrimSpace(a.Username) == "" {
		return "Anonymous"
	}
	return a.Username
}

// RecipeInput is the payload of createRecipe and updateRecipe.
type RecipeInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	CookingTime int          `json:"cookingTime"`
	Difficulty  Difficulty   `json:"difficulty"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	ImageURL    string       `json:"imageUrl"`
}

type RecipeSearch struct {
	Search *string `json:"search"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// UploadedImage is the storage result of an upload. Path stays client-side so
// the object can be deleted when replaced or removed.
type UploadedImage struct {
	URL         string `json:"url"`
	StoragePath string `json:"path"`
}
