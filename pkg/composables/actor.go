package composables

import (
	"context"
	"errors"
	"strings"

	"github.com/iota-uz/inventory/pkg/constants"
)

var ErrNoActor = errors.New("acting user not found in context")

// Actor identifies who triggered a mutation. Authentication happens upstream; the
// inventory only records the identity it is handed.
type Actor struct {
	ID       int64
	Username string
}

func (a Actor) IsZero() bool {
	return a.ID == 0 && strings.TrimSpace(a.Username) == ""
}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, constants.ActorKey, actor)
}

func UseActor(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(constants.ActorKey).(Actor)
	if !ok || actor.IsZero() {
		return Actor{}, ErrNoActor
	}
	return actor, nil
}
