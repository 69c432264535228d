package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	errorCommandDependency   = "LOW_COMMAND_DEPENDENCY"
	errorCommandInvalidInput = "LOW_COMMAND_INVALID_INPUT"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(errorCommandDependency)
}

func commandInvalidInputError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(errorCommandInvalidInput)
}
