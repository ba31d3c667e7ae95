package model

type Comment struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Author    Author `json:"author"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

func (c Comment) Edited() bool {
	return c.UpdatedAt != "" && c.UpdatedAt != c.CreatedAt
}
