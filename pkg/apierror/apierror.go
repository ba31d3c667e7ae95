package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies an error by how the console reacts to it.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindAuth         Kind = "auth"
	KindForbidden    Kind = "forbidden"
	KindAPI          Kind = "api"
	KindNetwork      Kind = "network"
	KindStorage      Kind = "storage"
	KindConfirmation Kind = "confirmation"
	KindInternal     Kind = "internal"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Kind       Kind   `json:"kind,omitempty"`
	HTTPStatus int    `json:"-"`
	cause      error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status, Kind: KindInternal}
}

func (e *APIError) WithKind(kind Kind) *APIError {
	e.Kind = kind
	return e
}

func (e *APIError) WithCause(cause error) *APIError {
	e.cause = cause
	return e
}

// KindOf returns the kind of the first APIError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind != "" {
		return apiErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
