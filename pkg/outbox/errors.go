package outbox

import (
	"fmt"

	"github.com/go-faster/errors"
)

var ErrInvalidConfig = errors.New("invalid outbox configuration")

func invalidConfig(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrInvalidConfig}, args...)...)
}
