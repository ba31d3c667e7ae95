package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recipe-admin/internal/model"
)

type mockRecipeGateway struct {
	mock.Mock
}

func (m *mockRecipeGateway) Recipes(ctx context.Context, search model.RecipeSearch) ([]model.Recipe, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *mockRecipeGateway) CreateRecipe(ctx context.Context, input model.RecipeInput) (model.Recipe, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *mockRecipeGateway) UpdateRecipe(ctx context.Context, id string, input model.RecipeInput) (model.Recipe, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *mockRecipeGateway) DeleteRecipe(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockCommentGateway struct {
	mock.Mock
}

func (m *mockCommentGateway) RecipeComments(ctx context.Context, recipeID string) ([]model.Comment, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Comment), args.Error(1)
}

func (m *mockCommentGateway) AddComment(ctx context.Context, recipeID string, content string) (model.Comment, error) {
	args := m.Called(ctx, recipeID, content)
	return args.Get(0).(model.Comment), args.Error(1)
}

func (m *mockCommentGateway) UpdateComment(ctx context.Context, id string, content string) (model.Comment, error) {
	args := m.Called(ctx, id, content)
	return args.Get(0).(model.Comment), args.Error(1)
}

func (m *mockCommentGateway) DeleteComment(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCommentGateway) DeleteMultipleComments(ctx context.Context, ids []string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

type mockUserGateway struct {
	mock.Mock
}

func (m *mockUserGateway) Users(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserGateway) CreateUser(ctx context.Context, input model.RegisterInput) (model.AuthPayload, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.AuthPayload), args.Error(1)
}

func (m *mockUserGateway) UpdateUser(ctx context.Context, id string, input model.UpdateUserInput) (model.User, error) {
	args := m.Called(ctx, id, input)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserGateway) DeleteUser(ctx context.Context, id string) (model.MutationResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.MutationResult), args.Error(1)
}

type mockAuthGateway struct {
	mock.Mock
}

func (m *mockAuthGateway) Login(ctx context.Context, input model.LoginInput) (model.AuthPayload, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.AuthPayload), args.Error(1)
}

func (m *mockAuthGateway) Logout(ctx context.Context) (model.MutationResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.MutationResult), args.Error(1)
}

func (m *mockAuthGateway) ForgotPassword(ctx context.Context, email string) (model.MutationResult, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.MutationResult), args.Error(1)
}

func (m *mockAuthGateway) ResetPassword(ctx context.Context, input model.ResetPasswordInput) (model.MutationResult, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.MutationResult), args.Error(1)
}

type staticUser struct {
	user *model.SessionUser
}

func (s staticUser) User() *model.SessionUser {
	return s.user
}
