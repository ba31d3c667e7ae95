package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
	"recipe-admin/internal/store"
	"recipe-admin/internal/util"
	"recipe-admin/pkg/apierror"
)

type UserGateway interface {
	Users(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, input model.RegisterInput) (model.AuthPayload, error)
	UpdateUser(ctx context.Context, id string, input model.UpdateUserInput) (model.User, error)
	DeleteUser(ctx context.Context, id string) (model.MutationResult, error)
}

type UserForm struct {
	Mode     EditorMode `json:"mode"`
	UserID   string     `json:"userId,omitempty"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
}

type UserRow struct {
	model.User
	Date string `json:"date"`
}

type UserAdminState struct {
	Users   []UserRow              `json:"users"`
	Loading bool                   `json:"loading"`
	Error   string                 `json:"error,omitempty"`
	Form    UserForm               `json:"form"`
	Errors  model.ValidationErrors `json:"errors,omitempty"`
}

type createUserForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

type updateUserForm struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
}

// UserAdmin is the users page: listing plus a create/edit form.
type UserAdmin struct {
	mu       sync.Mutex
	gw       UserGateway
	users    *store.UserStore
	notifier *event.Notifier
	loc      *time.Location

	loading bool
	loadErr error
	form    UserForm
	errors  model.ValidationErrors
}

func NewUserAdmin(gw UserGateway, users *store.UserStore, notifier *event.Notifier, loc *time.Location) *UserAdmin {
	if loc == nil {
		loc = time.Local
	}
	return &UserAdmin{
		gw:       gw,
		users:    users,
		notifier: notifier,
		loc:      loc,
		form:     UserForm{Mode: EditorClosed},
	}
}

func (a *UserAdmin) Load(ctx context.Context) (UserAdminState, error) {
	a.mu.Lock()
	a.loading = true
	a.mu.Unlock()

	users, err := a.gw.Users(ctx)

	a.mu.Lock()
	a.loading = false
	a.loadErr = err
	a.mu.Unlock()

	if err != nil {
		a.notifier.Error("Failed to load users: " + errorMessage(err))
		return a.State(), err
	}

	a.users.SetUsers(users)
	return a.State(), nil
}

func (a *UserAdmin) OpenCreate() UserAdminState {
	a.mu.Lock()
	a.form = UserForm{Mode: EditorCreate, Role: model.RoleUser}
	a.errors = nil
	a.mu.Unlock()
	return a.State()
}

// OpenEdit pre-fills the form; the password always starts blank.
func (a *UserAdmin) OpenEdit(user model.User) UserAdminState {
	role := strings.TrimSpace(user.Role)
	if role == "" {
		role = model.RoleUser
	}

	a.mu.Lock()
	a.form = UserForm{Mode: EditorEdit, UserID: user.ID, Username: user.Username, Email: user.Email, Role: role}
	a.errors = nil
	a.mu.Unlock()
	return a.State()
}

// OpenEditByID opens the form for a user from the loaded list.
func (a *UserAdmin) OpenEditByID(id string) (UserAdminState, error) {
	user, ok := a.users.Get(id)
	if !ok {
		return a.State(), model.ErrUserNotFound
	}
	return a.OpenEdit(user), nil
}

func (a *UserAdmin) CloseForm() UserAdminState {
	a.mu.Lock()
	a.form = UserForm{Mode: EditorClosed}
	a.errors = nil
	a.mu.Unlock()
	return a.State()
}

// Submit validates the form and creates or updates the account, then
// refetches the list. A blank password on update leaves it unchanged.
func (a *UserAdmin) Submit(ctx context.Context, req model.UserFormRequest) (UserAdminState, error) {
	a.mu.Lock()
	form := a.form
	a.mu.Unlock()

	if form.Mode == EditorClosed {
		return a.State(), model.ErrEditorClosed
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = model.RoleUser
	}
	password := req.Password

	var errs model.ValidationErrors
	if form.Mode == EditorCreate {
		errs = validateForm(createUserForm{Username: username, Email: email, Password: password, Role: role})
	} else {
		errs = validateForm(updateUserForm{Username: username, Email: email, Password: password, Role: role})
	}

	a.mu.Lock()
	a.form.Username, a.form.Email, a.form.Role = username, email, role
	a.errors = errs
	a.mu.Unlock()

	if len(errs) > 0 {
		return a.State(), validationError(errs)
	}

	var err error
	if form.Mode == EditorCreate {
		_, err = a.gw.CreateUser(ctx, model.RegisterInput{Username: username, Email: email, Password: password, Role: role})
	} else {
		input := model.UpdateUserInput{Username: username, Email: email, Role: role}
		if strings.TrimSpace(password) != "" {
			input.Password = password
		}
		var updated model.User
		updated, err = a.gw.UpdateUser(ctx, form.UserID, input)
		if err == nil && updated.ID != "" {
			a.users.Upsert(updated)
		}
	}

	if err != nil {
		a.notifier.Error("Failed to save user: " + errorMessage(err))
		return a.State(), err
	}

	if form.Mode == EditorCreate {
		a.notifier.Success("User created")
	} else {
		a.notifier.Success("User updated")
	}

	a.CloseForm()
	return a.reloadAfterMutation(ctx)
}

func (a *UserAdmin) Delete(ctx context.Context, id string, confirmed bool) (UserAdminState, error) {
	if strings.TrimSpace(id) == "" {
		return a.State(), invalidInput("user id is required", model.ErrUserNotFound)
	}
	if !confirmed {
		return a.State(), confirmationRequired("Are you sure you want to delete this user?")
	}

	if _, err := a.gw.DeleteUser(ctx, id); err != nil {
		a.notifier.Error("Failed to delete user: " + errorMessage(err))
		return a.State(), err
	}

	a.users.Remove(id)
	a.notifier.Success("User deleted")
	return a.reloadAfterMutation(ctx)
}

// reloadAfterMutation refetches the list once a mutation succeeded. A failed
// refetch is already notified by Load and does not fail the mutation, except
// for a rejected session, which must still reach the login redirect.
func (a *UserAdmin) reloadAfterMutation(ctx context.Context) (UserAdminState, error) {
	state, err := a.Load(ctx)
	if err == nil {
		return state, nil
	}
	if apierror.Is(err, apierror.KindAuth) {
		return state, err
	}
	slog.Warn("user list refresh after mutation failed", "error", err)
	return state, nil
}

func (a *UserAdmin) State() UserAdminState {
	users := a.users.Users()
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{User: u, Date: util.FormatDate(u.CreatedAt, a.loc)})
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state := UserAdminState{Users: rows, Loading: a.loading, Form: a.form}
	if a.loadErr != nil {
		state.Error = errorMessage(a.loadErr)
	}
	if a.errors != nil {
		state.Errors = model.ValidationErrors{}
		for k, v := range a.errors {
			state.Errors[k] = v
		}
	}
	return state
}
