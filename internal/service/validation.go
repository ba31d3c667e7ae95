package service

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"recipe-admin/internal/model"
	"recipe-admin/pkg/apierror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email address",
	"min":      "%s must be at least %s characters long",
	"gte":      "%s must be greater than or equal to %s",
	"oneof":    "%s must be one of: %s",
}

// validateForm runs struct validation and returns field-scoped messages keyed
// by json path, e.g. "ingredients[1].unit".
func validateForm(form any) model.ValidationErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return model.ValidationErrors{"form": err.Error()}
	}

	out := model.ValidationErrors{}
	for _, fe := range fieldErrs {
		path := fe.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		if _, exists := out[path]; !exists {
			out[path] = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	msg, ok := validationMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, fe.Field(), fe.Param())
	}
	return fmt.Sprintf(msg, fe.Field())
}

func validationError(errs model.ValidationErrors) error {
	return apierror.New("VALIDATION_FAILED", "please fix the highlighted fields", errs.Error(), http.StatusUnprocessableEntity).
		WithKind(apierror.KindValidation).
		WithCause(errs)
}

func confirmationRequired(prompt string) error {
	return apierror.New("CONFIRMATION_REQUIRED", prompt, "", http.StatusConflict).WithKind(apierror.KindConfirmation)
}

func invalidInput(message string, cause error) error {
	return apierror.New("INVALID_INPUT", message, "", http.StatusBadRequest).WithKind(apierror.KindValidation).WithCause(cause)
}

func forbidden(message string) error {
	return apierror.New("FORBIDDEN", message, "", http.StatusForbidden).WithKind(apierror.KindForbidden).WithCause(model.ErrForbidden)
}
