package model

import "strings"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SessionUser is the identity carried by the console session.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, RoleAdmin)
}

// User is an account as listed by the users query. Passwords are never read back.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type AuthPayload struct {
	Token string      `json:"token"`
	User  SessionUser `json:"user"`
}

type LoginInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// UpdateUserInput leaves Password empty, and therefore absent from the payload,
// when the operator does not change it.
type UpdateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}

type ResetPasswordInput struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type MutationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AuthCheck struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *SessionUser `json:"user"`
}

type UserPermissions struct {
	CanCreateRecipe   bool `json:"canCreateRecipe"`
	CanEditRecipe     bool `json:"canEditRecipe"`
	CanDeleteRecipe   bool `json:"canDeleteRecipe"`
	CanManageUsers    bool `json:"canManageUsers"`
	CanManageComments bool `json:"canManageComments"`
}
