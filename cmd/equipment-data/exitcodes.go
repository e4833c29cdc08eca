package main

import (
	"github.com/go-faster/errors"

	"github.com/iota-uz/inventory/modules/equipment/domain/inventory"
	"github.com/iota-uz/inventory/modules/equipment/services"
	"github.com/iota-uz/inventory/pkg/importlock"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitDBWrite    = 5
	exitLocked     = 6
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// importExitCode classifies an import service error.
func importExitCode(err error) int {
	var fileErr *services.FileError
	switch {
	case errors.As(err, &fileErr),
		errors.Is(err, inventory.ErrMalformedInput),
		errors.Is(err, inventory.ErrNoInput):
		return exitValidation
	case errors.Is(err, services.ErrActorRequired):
		return exitUsage
	case errors.Is(err, importlock.ErrLocked):
		return exitLocked
	case errors.Is(err, services.ErrPersistence):
		return exitDBWrite
	default:
		return exitDB
	}
}
