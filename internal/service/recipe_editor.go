package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
	"recipe-admin/internal/storage"
	"recipe-admin/internal/util"
	"recipe-admin/pkg/apierror"
)

type EditorMode string

const (
	EditorClosed EditorMode = "closed"
	EditorCreate EditorMode = "create"
	EditorEdit   EditorMode = "edit"
)

// DefaultMaxImageSize is the upload ceiling; files of this size or larger are rejected.
const DefaultMaxImageSize = 5 << 20

// SubmitFunc persists an assembled recipe. recipeID is empty in create mode.
type SubmitFunc func(ctx context.Context, mode EditorMode, recipeID string, input model.RecipeInput) error

type Draft struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CookingTime int                `json:"cookingTime"`
	Difficulty  model.Difficulty   `json:"difficulty"`
	Ingredients []model.Ingredient `json:"ingredients"`
	Steps       []string           `json:"steps"`
}

type EditorState struct {
	Mode             EditorMode             `json:"mode"`
	RecipeID         string                 `json:"recipeId,omitempty"`
	Draft            Draft                  `json:"draft"`
	ImageURL         string                 `json:"imageUrl"`
	OriginalImageURL string                 `json:"originalImageUrl,omitempty"`
	Uploaded         *model.UploadedImage   `json:"uploaded,omitempty"`
	Uploading        bool                   `json:"uploading"`
	Submitting       bool                   `json:"submitting"`
	Errors           model.ValidationErrors `json:"errors,omitempty"`
}

type recipeForm struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description" validate:"required"`
	CookingTime int              `json:"cookingTime" validate:"gte=1"`
	Difficulty  string           `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Ingredients []ingredientForm `json:"ingredients" validate:"dive"`
	Steps       []string         `json:"steps" validate:"dive,required"`
}

type ingredientForm struct {
	Name     string `json:"name" validate:"required"`
	Quantity string `json:"quantity" validate:"required"`
	Unit     string `json:"unit" validate:"required"`
}

// RecipeEditor is the create/edit form for one recipe at a time.
type RecipeEditor struct {
	mu       sync.Mutex
	state    EditorState
	objects  storage.ObjectStore
	notifier *event.Notifier
	submit   SubmitFunc
	maxSize  int64

	// opened changes on every open and cancel so late upload results can
	// tell whether their draft still exists.
	opened uint64
}

func NewRecipeEditor(objects storage.ObjectStore, notifier *event.Notifier, maxSize int64, submit SubmitFunc) *RecipeEditor {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &RecipeEditor{
		state:    closedState(),
		objects:  objects,
		notifier: notifier,
		submit:   submit,
		maxSize:  maxSize,
	}
}

func closedState() EditorState {
	return EditorState{Mode: EditorClosed, Draft: Draft{Ingredients: []model.Ingredient{}, Steps: []string{}}}
}

func (e *RecipeEditor) OpenCreate() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opened++
	e.state = closedState()
	e.state.Mode = EditorCreate
	return e.snapshotLocked()
}

// OpenEdit loads recipe into the draft, normalizing its steps and keeping only
// array-shaped ingredients.
func (e *RecipeEditor) OpenEdit(recipe model.Recipe) EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opened++
	ingredients := append([]model.Ingredient{}, recipe.Ingredients...)

	e.state = EditorState{
		Mode:     EditorEdit,
		RecipeID: recipe.ID,
		Draft: Draft{
			Title:       recipe.Title,
			Description: recipe.Description,
			CookingTime: recipe.CookingTime,
			Difficulty:  recipe.Difficulty,
			Ingredients: ingredients,
			Steps:       recipe.Steps.Normalize(),
		},
		ImageURL:         recipe.ImageURL,
		OriginalImageURL: recipe.ImageURL,
	}
	return e.snapshotLocked()
}

func (e *RecipeEditor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *RecipeEditor) SetFields(req model.DraftFieldsRequest) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		if req.Title != nil {
			d.Title = *req.Title
		}
		if req.Description != nil {
			d.Description = *req.Description
		}
		if req.CookingTime != nil {
			d.CookingTime = *req.CookingTime
		}
		if req.Difficulty != nil {
			d.Difficulty = *req.Difficulty
		}
		return nil
	})
}

func (e *RecipeEditor) AddIngredient(ing model.Ingredient) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		d.Ingredients = append(d.Ingredients, ing)
		return nil
	})
}

func (e *RecipeEditor) SetIngredient(index int, ing model.Ingredient) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		if index < 0 || index >= len(d.Ingredients) {
			return indexError(index)
		}
		d.Ingredients[index] = ing
		return nil
	})
}

func (e *RecipeEditor) RemoveIngredient(index int) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		if index < 0 || index >= len(d.Ingredients) {
			return indexError(index)
		}
		d.Ingredients = util.RemoveAt(d.Ingredients, index)
		return nil
	})
}

func (e *RecipeEditor) AddStep(text string) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		d.Steps = append(d.Steps, text)
		return nil
	})
}

func (e *RecipeEditor) SetStep(index int, text string) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		if index < 0 || index >= len(d.Steps) {
			return indexError(index)
		}
		d.Steps[index] = text
		return nil
	})
}

func (e *RecipeEditor) RemoveStep(index int) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		if index < 0 || index >= len(d.Steps) {
			return indexError(index)
		}
		d.Steps = util.RemoveAt(d.Steps, index)
		return nil
	})
}

// MoveStep reorders steps only; every other draft field is left untouched.
func (e *RecipeEditor) MoveStep(from int, to int) (EditorState, error) {
	return e.mutate(func(d *Draft) error {
		if from < 0 || from >= len(d.Steps) || to < 0 || to >= len(d.Steps) {
			return indexError(from)
		}
		d.Steps = util.MoveItem(d.Steps, from, to)
		return nil
	})
}

func (e *RecipeEditor) mutate(fn func(d *Draft) error) (EditorState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireIdleLocked(); err != nil {
		return e.snapshotLocked(), err
	}

	if err := fn(&e.state.Draft); err != nil {
		return e.snapshotLocked(), err
	}
	e.state.Errors = nil
	return e.snapshotLocked(), nil
}

// UploadImage validates and stores a new image, replacing any image uploaded
// earlier in this session. Rejected files never reach storage.
func (e *RecipeEditor) UploadImage(ctx context.Context, name string, r io.Reader) (EditorState, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return e.State(), invalidInput("failed to read image", err)
	}

	if err := e.checkImage(name, data); err != nil {
		e.notifier.Error(err.Error())
		return e.State(), err
	}

	e.mu.Lock()
	if err := e.requireIdleLocked(); err != nil {
		state := e.snapshotLocked()
		e.mu.Unlock()
		return state, err
	}
	e.state.Uploading = true
	previous := e.state.Uploaded
	opened := e.opened
	e.mu.Unlock()

	if previous != nil {
		if err := e.deleteUploaded(ctx, previous); err != nil {
			slog.Warn("failed to delete replaced image", "path", previous.StoragePath, "error", err)
			e.finishUpload(opened, nil)
			e.notifier.Error("Image upload failed: " + err.Error())
			return e.State(), err
		}
		// the earlier object is gone, fall back to the original until the new one lands
		e.mu.Lock()
		if e.opened == opened {
			e.state.Uploaded = nil
			e.state.ImageURL = e.state.OriginalImageURL
		}
		e.mu.Unlock()
	}

	uploaded, err := e.objects.Upload(ctx, name, bytes.NewReader(data))
	if err != nil {
		e.finishUpload(opened, nil)
		e.notifier.Error("Image upload failed: " + err.Error())
		return e.State(), err
	}

	e.finishUpload(opened, &uploaded)
	e.notifier.Success("Image uploaded")
	return e.State(), nil
}

// finishUpload applies an upload result to the draft it was started for. A
// draft that was cancelled or replaced meanwhile is left untouched and the
// object stays orphaned like any unsaved upload.
func (e *RecipeEditor) finishUpload(opened uint64, uploaded *model.UploadedImage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.opened != opened {
		if uploaded != nil {
			slog.Debug("dropping upload for a closed draft", "path", uploaded.StoragePath)
		}
		return
	}
	e.state.Uploading = false
	if uploaded == nil || e.state.Mode == EditorClosed {
		return
	}
	e.state.Uploaded = uploaded
	e.state.ImageURL = uploaded.URL
}

func (e *RecipeEditor) checkImage(name string, data []byte) error {
	if int64(len(data)) >= e.maxSize {
		return apierror.New("IMAGE_TOO_LARGE", fmt.Sprintf("image must be smaller than %d MB", e.maxSize>>20), name, http.StatusRequestEntityTooLarge).
			WithKind(apierror.KindValidation).WithCause(model.ErrImageTooLarge)
	}

	mimeType := http.DetectContentType(data)
	format, cfg, decodeErr := util.DecodeImageConfig(data)
	if !util.IsImageMIME(mimeType) && decodeErr != nil {
		return apierror.New("UNSUPPORTED_IMAGE", "only image files can be uploaded", name, http.StatusUnsupportedMediaType).
			WithKind(apierror.KindValidation).WithCause(model.ErrUnsupportedImage)
	}

	if decodeErr == nil {
		slog.Debug("image accepted", "name", name, "format", format, "width", cfg.Width, "height", cfg.Height)
	}
	return nil
}

// deleteUploaded removes an upload by its storage path, falling back to the
// download URL when the store did not report a path.
func (e *RecipeEditor) deleteUploaded(ctx context.Context, img *model.UploadedImage) error {
	if strings.TrimSpace(img.StoragePath) != "" {
		return e.objects.Delete(ctx, img.StoragePath)
	}
	return e.objects.DeleteByURL(ctx, img.URL)
}

// RemoveImage deletes the image uploaded in this session and reverts to the
// recipe's original image. Without an uploaded image the field is cleared.
func (e *RecipeEditor) RemoveImage(ctx context.Context) (EditorState, error) {
	e.mu.Lock()
	if err := e.requireIdleLocked(); err != nil {
		state := e.snapshotLocked()
		e.mu.Unlock()
		return state, err
	}
	uploaded := e.state.Uploaded
	if uploaded == nil {
		e.state.ImageURL = ""
		state := e.snapshotLocked()
		e.mu.Unlock()
		return state, nil
	}
	e.state.Uploading = true
	opened := e.opened
	e.mu.Unlock()

	err := e.deleteUploaded(ctx, uploaded)

	e.mu.Lock()
	if e.opened == opened {
		e.state.Uploading = false
	}
	if err == nil && e.opened == opened && e.state.Uploaded == uploaded {
		e.state.Uploaded = nil
		e.state.ImageURL = e.state.OriginalImageURL
	}
	state := e.snapshotLocked()
	e.mu.Unlock()

	if err != nil {
		e.notifier.Error("Failed to remove image: " + err.Error())
		return state, err
	}
	return state, nil
}

// Submit validates the draft and hands the assembled payload to the submit
// function. Invalid drafts never reach it.
func (e *RecipeEditor) Submit(ctx context.Context) (EditorState, error) {
	e.mu.Lock()
	if err := e.requireIdleLocked(); err != nil {
		state := e.snapshotLocked()
		e.mu.Unlock()
		return state, err
	}

	form := buildRecipeForm(e.state.Draft)
	if errs := validateForm(form); len(errs) > 0 {
		e.state.Errors = errs
		state := e.snapshotLocked()
		e.mu.Unlock()
		return state, validationError(errs)
	}

	input := assembleInput(form, e.state)
	mode := e.state.Mode
	recipeID := e.state.RecipeID
	e.state.Submitting = true
	e.state.Errors = nil
	e.mu.Unlock()

	err := e.submit(ctx, mode, recipeID, input)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.state.Submitting = false
		return e.snapshotLocked(), err
	}

	e.state = closedState()
	return e.snapshotLocked(), nil
}

// Cancel discards the draft. An uploaded but unsaved image is not deleted.
func (e *RecipeEditor) Cancel() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state.Uploaded != nil {
		slog.Debug("discarding unsaved upload", "path", e.state.Uploaded.StoragePath)
	}
	e.opened++
	e.state = closedState()
	return e.snapshotLocked()
}

func (e *RecipeEditor) requireIdleLocked() error {
	switch {
	case e.state.Mode == EditorClosed:
		return model.ErrEditorClosed
	case e.state.Submitting, e.state.Uploading:
		return model.ErrEditorBusy
	default:
		return nil
	}
}

func (e *RecipeEditor) snapshotLocked() EditorState {
	out := e.state
	out.Draft.Ingredients = append([]model.Ingredient{}, e.state.Draft.Ingredients...)
	out.Draft.Steps = append([]string{}, e.state.Draft.Steps...)
	if e.state.Uploaded != nil {
		u := *e.state.Uploaded
		out.Uploaded = &u
	}
	if e.state.Errors != nil {
		out.Errors = model.ValidationErrors{}
		for k, v := range e.state.Errors {
			out.Errors[k] = v
		}
	}
	return out
}

func buildRecipeForm(d Draft) recipeForm {
	form := recipeForm{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		CookingTime: d.CookingTime,
		Difficulty:  strings.TrimSpace(string(d.Difficulty)),
		Ingredients: make([]ingredientForm, 0, len(d.Ingredients)),
		Steps:       make([]string, 0, len(d.Steps)),
	}
	for _, ing := range d.Ingredients {
		form.Ingredients = append(form.Ingredients, ingredientForm{
			Name:     strings.TrimSpace(ing.Name),
			Quantity: strings.TrimSpace(string(ing.Quantity)),
			Unit:     strings.TrimSpace(ing.Unit),
		})
	}
	for _, step := range d.Steps {
		form.Steps = append(form.Steps, strings.TrimSpace(step))
	}
	return form
}

func assembleInput(form recipeForm, state EditorState) model.RecipeInput {
	input := model.RecipeInput{
		Title:       form.Title,
		Description: form.Description,
		CookingTime: form.CookingTime,
		Difficulty:  model.Difficulty(form.Difficulty),
		Ingredients: make([]model.Ingredient, 0, len(form.Ingredients)),
		Steps:       append([]string{}, form.Steps...),
		ImageURL:    state.ImageURL,
	}
	if state.Uploaded != nil {
		input.ImageURL = state.Uploaded.URL
	}

	for _, ing := range form.Ingredients {
		input.Ingredients = append(input.Ingredients, model.Ingredient{Name: ing.Name, Quantity: model.Quantity(ing.Quantity), Unit: ing.Unit})
	}
	return input
}

// indexError reports a draft list index that does not exist.
func indexError(index int) error {
	return apierror.New("INDEX_OUT_OF_RANGE", fmt.Sprintf("no item at position %d", index), "", http.StatusBadRequest).
		WithKind(apierror.KindValidation).WithCause(model.ErrIndexOutOfRange)
}
