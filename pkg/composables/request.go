package composables

import (
	"context"
	"errors"
	"time"

	"github.com/iota-uz/inventory/pkg/constants"
)

var ErrNoRequestStart = errors.New("request start not found")

func WithRequestStart(ctx context.Context, start time.Time) context.Context {
	return context.WithValue(ctx, constants.RequestStart, start)
}

// UseRequestStart returns the time the current request entered the middleware stack.
func UseRequestStart(ctx context.Context) (time.Time, error) {
	start, ok := ctx.Value(constants.RequestStart).(time.Time)
	if !ok {
		return time.Time{}, ErrNoRequestStart
	}
	return start, nil
}
