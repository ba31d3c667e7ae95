package model

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SearchRequest struct {
	Text string `json:"text"`
}

type DraftFieldsRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	CookingTime *int        `json:"cookingTime"`
	Difficulty  *Difficulty `json:"difficulty"`
}

type IngredientRequest struct {
	Name     string   `json:"name"`
	Quantity Quantity `json:"quantity"`
	Unit     string   `json:"unit"`
}

type StepRequest struct {
	Text string `json:"text"`
}

type MoveStepRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

type SelectRequest struct {
	Selected bool `json:"selected"`
}

type UserFormRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}
