package services

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrActorRequired is returned when a mutation has no acting username.
	ErrActorRequired = errors.New("acting username is required")
	// ErrPersistence marks failures after parsing succeeded; the whole transaction was rolled back.
	ErrPersistence = errors.New("could not persist")
)

// FileError reports a failure reading one uploaded file. File is the form field name.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ValidationError carries per-field messages keyed by canonical field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Fields))
}

type persistError struct {
	op  string
	err error
}

func (e *persistError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.op, e.err)
}

func (e *persistError) Unwrap() error { return e.err }

func (e *persistError) Is(target error) bool { return target == ErrPersistence }

func persistFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &persistError{op: op, err: err}
}
