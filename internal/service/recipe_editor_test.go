package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipe-admin/internal/model"
	"recipe-admin/internal/storage"
	"recipe-admin/pkg/apierror"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type submitRecorder struct {
	calls  int
	mode   EditorMode
	id     string
	input  model.RecipeInput
	result error
}

func (r *submitRecorder) submit(_ context.Context, mode EditorMode, id string, input model.RecipeInput) error {
	r.calls++
	r.mode, r.id, r.input = mode, id, input
	return r.result
}

func validDraft(t *testing.T, e *RecipeEditor) {
	t.Helper()
	title, desc, cook, diff := "Phở", "Vietnamese noodle soup", 120, model.DifficultyMedium
	_, err := e.SetFields(model.DraftFieldsRequest{Title: &title, Description: &desc, CookingTime: &cook, Difficulty: &diff})
	require.NoError(t, err)
	_, err = e.AddIngredient(model.Ingredient{Name: "rice noodles", Quantity: "200", Unit: "g"})
	require.NoError(t, err)
	_, err = e.AddStep("Simmer broth")
	require.NoError(t, err)
}

func TestRecipeEditor_SubmitValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(t *testing.T, e *RecipeEditor)
	}{
		{"missing title", "title", func(t *testing.T, e *RecipeEditor) {
			blank := "  "
			_, err := e.SetFields(model.DraftFieldsRequest{Title: &blank})
			require.NoError(t, err)
		}},
		{"missing description", "description", func(t *testing.T, e *RecipeEditor) {
			blank := ""
			_, err := e.SetFields(model.DraftFieldsRequest{Description: &blank})
			require.NoError(t, err)
		}},
		{"cooking time below one", "cookingTime", func(t *testing.T, e *RecipeEditor) {
			zero := 0
			_, err := e.SetFields(model.DraftFieldsRequest{CookingTime: &zero})
			require.NoError(t, err)
		}},
		{"unknown difficulty", "difficulty", func(t *testing.T, e *RecipeEditor) {
			d := model.Difficulty("extreme")
			_, err := e.SetFields(model.DraftFieldsRequest{Difficulty: &d})
			require.NoError(t, err)
		}},
		{"ingredient without unit", "ingredients[0].unit", func(t *testing.T, e *RecipeEditor) {
			_, err := e.SetIngredient(0, model.Ingredient{Name: "noodles", Quantity: "200"})
			require.NoError(t, err)
		}},
		{"ingredient without quantity", "ingredients[0].quantity", func(t *testing.T, e *RecipeEditor) {
			_, err := e.SetIngredient(0, model.Ingredient{Name: "noodles", Unit: "g"})
			require.NoError(t, err)
		}},
		{"ingredient with blank quantity", "ingredients[0].quantity", func(t *testing.T, e *RecipeEditor) {
			_, err := e.SetIngredient(0, model.Ingredient{Name: "noodles", Quantity: "  ", Unit: "g"})
			require.NoError(t, err)
		}},
		{"empty step", "steps[0]", func(t *testing.T, e *RecipeEditor) {
			_, err := e.SetStep(0, " ")
			require.NoError(t, err)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &submitRecorder{}
			editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, rec.submit)
			editor.OpenCreate()
			validDraft(t, editor)
			tt.edit(t, editor)

			state, err := editor.Submit(context.Background())
			require.Error(t, err)
			assert.True(t, apierror.Is(err, apierror.KindValidation))

			var fieldErrs model.ValidationErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.True(t, fieldErrs.Has(tt.field), "errors: %v", fieldErrs)

			assert.Equal(t, 0, rec.calls)
			assert.Equal(t, EditorCreate, state.Mode)
			assert.False(t, state.Submitting)
			assert.True(t, state.Errors.Has(tt.field))
		})
	}
}

func TestRecipeEditor_MoveStepOnlyReordersSteps(t *testing.T) {
	editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, (&submitRecorder{}).submit)
	editor.OpenEdit(model.Recipe{
		ID:          "r1",
		Title:       "Phở",
		Description: "soup",
		CookingTime: 90,
		Difficulty:  model.DifficultyHard,
		Ingredients: []model.Ingredient{{Name: "beef", Quantity: "1", Unit: "kg"}},
		Steps:       model.StepsOf("A", "B", "C"),
		ImageURL:    "http://img/1",
	})
	before := editor.State()

	after, err := editor.MoveStep(0, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, after.Draft.Steps)
	assert.Equal(t, before.Draft.Title, after.Draft.Title)
	assert.Equal(t, before.Draft.Description, after.Draft.Description)
	assert.Equal(t, before.Draft.CookingTime, after.Draft.CookingTime)
	assert.Equal(t, before.Draft.Difficulty, after.Draft.Difficulty)
	assert.Equal(t, before.Draft.Ingredients, after.Draft.Ingredients)
	assert.Equal(t, before.ImageURL, after.ImageURL)

	_, err = editor.MoveStep(0, 3)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestRecipeEditor_OpenEditNormalizesSteps(t *testing.T) {
	tests := []struct {
		name  string
		steps model.StepsField
		want  []string
	}{
		{"array", model.StepsOf("a", "b"), []string{"a", "b"}},
		{"json string", model.StepsField{Kind: model.StepsString, Raw: `["x","y"]`}, []string{"x", "y"}},
		{"bad string", model.StepsField{Kind: model.StepsString, Raw: `not json`}, []string{}},
		{"object", model.StepsField{Kind: model.StepsObject}, []string{}},
		{"absent", model.StepsField{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, nil)
			state := editor.OpenEdit(model.Recipe{ID: "r", Steps: tt.steps})
			assert.Equal(t, tt.want, state.Draft.Steps)
		})
	}
}

func TestRecipeEditor_SubmitAssemblesPayload(t *testing.T) {
	rec := &submitRecorder{}
	editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, rec.submit)
	editor.OpenEdit(model.Recipe{
		ID:          "r9",
		Title:       " Bún chả ",
		Description: "grilled pork",
		CookingTime: 45,
		Difficulty:  model.DifficultyEasy,
		Ingredients: []model.Ingredient{{Name: "pork", Quantity: model.QuantityFromFloat(0.5), Unit: "kg"}},
		Steps:       model.StepsOf("grill"),
		ImageURL:    "http://img/original",
	})

	state, err := editor.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EditorClosed, state.Mode)

	require.Equal(t, 1, rec.calls)
	assert.Equal(t, EditorEdit, rec.mode)
	assert.Equal(t, "r9", rec.id)
	assert.Equal(t, "Bún chả", rec.input.Title)
	assert.Equal(t, model.Quantity("0.5"), rec.input.Ingredients[0].Quantity)
	assert.Equal(t, "http://img/original", rec.input.ImageURL)
}

func TestRecipeEditor_SubmitFailureKeepsDraft(t *testing.T) {
	rec := &submitRecorder{result: errors.New("upstream down")}
	editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, rec.submit)
	editor.OpenCreate()
	validDraft(t, editor)

	state, err := editor.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, EditorCreate, state.Mode)
	assert.False(t, state.Submitting)
	assert.Equal(t, "Phở", state.Draft.Title)
}

func TestRecipeEditor_UploadGuard(t *testing.T) {
	t.Run("non image never reaches storage", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		editor := NewRecipeEditor(objects, nil, 0, nil)
		editor.OpenCreate()

		state, err := editor.UploadImage(context.Background(), "notes.txt", strings.NewReader("plain text notes"))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrUnsupportedImage)
		assert.Empty(t, state.ImageURL)
		assert.Equal(t, EditorCreate, state.Mode)
		objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("file at the size limit is rejected", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		data := pngBytes(t)
		editor := NewRecipeEditor(objects, nil, int64(len(data)), nil)
		editor.OpenCreate()

		_, err := editor.UploadImage(context.Background(), "dish.png", bytes.NewReader(data))
		assert.ErrorIs(t, err, model.ErrImageTooLarge)
		objects.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("closed editor rejects upload", func(t *testing.T) {
		editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, nil)
		_, err := editor.UploadImage(context.Background(), "dish.png", bytes.NewReader(pngBytes(t)))
		assert.ErrorIs(t, err, model.ErrEditorClosed)
	})
}

func TestRecipeEditor_UploadReplacesPreviousUpload(t *testing.T) {
	ctx := context.Background()
	objects := new(storage.MockObjectStore)
	editor := NewRecipeEditor(objects, nil, 0, nil)
	editor.OpenEdit(model.Recipe{ID: "r1", ImageURL: "http://img/original"})

	first := model.UploadedImage{URL: "http://img/first", StoragePath: "recipes/1_dish.png"}
	second := model.UploadedImage{URL: "http://img/second", StoragePath: "recipes/2_dish.png"}

	objects.On("Upload", ctx, "dish.png", mock.Anything).Return(first, nil).Once()
	state, err := editor.UploadImage(ctx, "dish.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, first.URL, state.ImageURL)

	objects.On("Delete", ctx, first.StoragePath).Return(nil).Once()
	objects.On("Upload", ctx, "dish.png", mock.Anything).Return(second, nil).Once()
	state, err = editor.UploadImage(ctx, "dish.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.Equal(t, second.URL, state.ImageURL)
	require.NotNil(t, state.Uploaded)
	assert.Equal(t, second.StoragePath, state.Uploaded.StoragePath)
	assert.Equal(t, "http://img/original", state.OriginalImageURL)

	objects.AssertExpectations(t)
}

func TestRecipeEditor_UploadFailureLeavesImage(t *testing.T) {
	ctx := context.Background()
	objects := new(storage.MockObjectStore)
	editor := NewRecipeEditor(objects, nil, 0, nil)
	editor.OpenEdit(model.Recipe{ID: "r1", ImageURL: "http://img/original"})

	objects.On("Upload", ctx, "dish.png", mock.Anything).Return(model.UploadedImage{}, errors.New("disk full"))

	state, err := editor.UploadImage(ctx, "dish.png", bytes.NewReader(pngBytes(t)))
	require.Error(t, err)
	assert.Equal(t, "http://img/original", state.ImageURL)
	assert.Nil(t, state.Uploaded)
	assert.False(t, state.Uploading)
	assert.Equal(t, EditorEdit, state.Mode)
}

func TestRecipeEditor_RemoveImage(t *testing.T) {
	ctx := context.Background()

	t.Run("reverts to original after deleting upload", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		editor := NewRecipeEditor(objects, nil, 0, nil)
		editor.OpenEdit(model.Recipe{ID: "r1", ImageURL: "http://img/original"})

		uploaded := model.UploadedImage{URL: "http://img/new", StoragePath: "recipes/n.png"}
		objects.On("Upload", ctx, "n.png", mock.Anything).Return(uploaded, nil)
		objects.On("Delete", ctx, uploaded.StoragePath).Return(nil)

		_, err := editor.UploadImage(ctx, "n.png", bytes.NewReader(pngBytes(t)))
		require.NoError(t, err)

		state, err := editor.RemoveImage(ctx)
		require.NoError(t, err)
		assert.Equal(t, "http://img/original", state.ImageURL)
		assert.Nil(t, state.Uploaded)
		objects.AssertExpectations(t)
	})

	t.Run("delete failure keeps the uploaded image", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		editor := NewRecipeEditor(objects, nil, 0, nil)
		editor.OpenCreate()

		uploaded := model.UploadedImage{URL: "http://img/new", StoragePath: "recipes/n.png"}
		objects.On("Upload", ctx, "n.png", mock.Anything).Return(uploaded, nil)
		objects.On("Delete", ctx, uploaded.StoragePath).Return(errors.New("denied"))

		_, err := editor.UploadImage(ctx, "n.png", bytes.NewReader(pngBytes(t)))
		require.NoError(t, err)

		state, err := editor.RemoveImage(ctx)
		require.Error(t, err)
		assert.Equal(t, uploaded.URL, state.ImageURL)
		require.NotNil(t, state.Uploaded)
	})

	t.Run("without upload the image is cleared", func(t *testing.T) {
		objects := new(storage.MockObjectStore)
		editor := NewRecipeEditor(objects, nil, 0, nil)
		editor.OpenEdit(model.Recipe{ID: "r1", ImageURL: "http://img/original"})

		state, err := editor.RemoveImage(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.ImageURL)
		objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestRecipeEditor_CancelKeepsStoredObject(t *testing.T) {
	ctx := context.Background()
	objects := new(storage.MockObjectStore)
	editor := NewRecipeEditor(objects, nil, 0, nil)
	editor.OpenCreate()

	objects.On("Upload", ctx, "n.png", mock.Anything).Return(model.UploadedImage{URL: "u", StoragePath: "recipes/n.png"}, nil)
	_, err := editor.UploadImage(ctx, "n.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	state := editor.Cancel()
	assert.Equal(t, EditorClosed, state.Mode)
	assert.Nil(t, state.Uploaded)
	objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRecipeEditor_DraftListEdits(t *testing.T) {
	editor := NewRecipeEditor(new(storage.MockObjectStore), nil, 0, nil)

	_, err := editor.AddStep("x")
	assert.ErrorIs(t, err, model.ErrEditorClosed)

	editor.OpenCreate()
	_, _ = editor.AddIngredient(model.Ingredient{Name: "a"})
	_, _ = editor.AddIngredient(model.Ingredient{Name: "b"})
	state, err := editor.RemoveIngredient(0)
	require.NoError(t, err)
	require.Len(t, state.Draft.Ingredients, 1)
	assert.Equal(t, "b", state.Draft.Ingredients[0].Name)

	_, err = editor.RemoveStep(0)
	assert.ErrorIs(t, err, model.ErrIndexOutOfRange)
}

func TestRecipeEditor_LateUploadIgnoredByNewDraft(t *testing.T) {
	ctx := context.Background()
	objects := new(storage.MockObjectStore)
	editor := NewRecipeEditor(objects, nil, 0, nil)
	editor.OpenCreate()

	started := make(chan struct{})
	release := make(chan struct{})
	objects.On("Upload", ctx, "late.png", mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(model.UploadedImage{URL: "http://img/late", StoragePath: "recipes/late.png"}, nil)

	data := pngBytes(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = editor.UploadImage(ctx, "late.png", bytes.NewReader(data))
	}()

	<-started
	editor.Cancel()
	editor.OpenEdit(model.Recipe{ID: "r2", ImageURL: "http://img/r2"})
	close(release)
	<-done

	state := editor.State()
	assert.Equal(t, EditorEdit, state.Mode)
	assert.Equal(t, "http://img/r2", state.ImageURL)
	assert.Nil(t, state.Uploaded)
	assert.False(t, state.Uploading)
}

func TestRecipeEditor_RemoveImageFallsBackToURL(t *testing.T) {
	ctx := context.Background()
	objects := new(storage.MockObjectStore)
	editor := NewRecipeEditor(objects, nil, 0, nil)
	editor.OpenEdit(model.Recipe{ID: "r1", ImageURL: "http://img/original"})

	uploaded := model.UploadedImage{URL: "http://console/storage/o/recipes%2Fn.png?alt=media&token=t"}
	objects.On("Upload", ctx, "n.png", mock.Anything).Return(uploaded, nil)
	objects.On("DeleteByURL", ctx, uploaded.URL).Return(nil)

	_, err := editor.UploadImage(ctx, "n.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	state, err := editor.RemoveImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://img/original", state.ImageURL)
	objects.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	objects.AssertExpectations(t)
}
