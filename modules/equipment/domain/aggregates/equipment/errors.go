package equipment

import "github.com/go-faster/errors"

var (
	ErrNotFound        = errors.New("equipment not found")
	ErrDuplicateSerial = errors.New("equipment with this serial already exists")
)
