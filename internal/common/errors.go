package common

import (
	"errors"
	"net/http"
)

// Sentinel errors for the gateway's failure taxonomy. Every collaborator
// failure is converted to one of these at the service boundary before it
// reaches a handler.
var (
	ErrValidation         = errors.New("validation failed")
	ErrStorage            = errors.New("storage backend failure")
	ErrTrigger            = errors.New("execution trigger failure")
	ErrDuplicateExecution = errors.New("execution already started for document")
	ErrNotFound           = errors.New("requested resource not found")
)

// HTTPStatusFromError maps the error taxonomy to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicateExecution) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrStorage) || errors.Is(err, ErrTrigger) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
