package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	errorQueryDependency   = "LOW_QUERY_DEPENDENCY"
	errorQueryInvalidInput = "LOW_QUERY_INVALID_INPUT"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(errorQueryDependency)
}

func queryInvalidInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(errorQueryInvalidInput)
}
