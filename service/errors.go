package service

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

func notFound(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode("NOT_FOUND")
}

func conflict(message string) error {
	return goerrors.New(message, goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode("CONFLICT")
}

func invalid(message string, fields ...goerrors.FieldError) error {
	return goerrors.NewValidation(message, fields...).
		WithCode(http.StatusBadRequest).
		WithTextCode("VALIDATION_ERROR")
}

// Login failures keep the 400 status clients already rely on.
func invalidCredentials() error {
	return goerrors.New("Invalid Credentials", goerrors.CategoryAuth).
		WithCode(http.StatusBadRequest).
		WithTextCode("INVALID_CREDENTIALS")
}
