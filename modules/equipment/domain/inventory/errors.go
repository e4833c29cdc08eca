package inventory

import "github.com/go-faster/errors"

var (
	// ErrMalformedInput is returned for a file without a header and at least one data row.
	ErrMalformedInput = errors.New("malformed input: expected a header and at least one data row")
	// ErrNoInput is returned when consolidation gets neither source.
	ErrNoInput = errors.New("no input: at least one source file is required")
)
