package eventbus

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/inventory/pkg/logging"
)

type importFinished struct {
	runID string
}

type otherEvent struct{}

func TestPublisher_NoMatchingSubscribersLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.WarnLevel)

	bus := NewEventPublisher(log)
	bus.Subscribe(func(e *importFinished) {
		t.Error("should not be called")
	})
	bus.Publish(&otherEvent{})

	require.Contains(t, buf.String(), "eventbus.Publish: no matching subscribers")
}

func TestPublisher_Subscribe(t *testing.T) {
	bus := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	var got string
	bus.Subscribe(func(e *importFinished) {
		got = e.runID
	})
	bus.Publish(&importFinished{runID: "run-1"})
	require.Equal(t, "run-1", got)
	require.Equal(t, 1, bus.SubscribersCount())
}

func TestPublisher_PublishE(t *testing.T) {
	bus := NewEventPublisher(nil)
	require.ErrorIs(t, bus.PublishE(&importFinished{}), ErrNoSubscribers)

	boom := errors.New("boom")
	bus.Subscribe(func(ctx context.Context, e *importFinished) error { return boom })
	bus.Subscribe(func(ctx context.Context, e *importFinished) { panic("handler exploded") })
	bus.Subscribe(func(ctx context.Context, e *importFinished) int { return 1 })

	err := bus.PublishE(context.Background(), &importFinished{})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, ErrInvalidHandlerReturn)
	require.Contains(t, err.Error(), "panicked")
}

func TestPublisher_UnsubscribeAndClear(t *testing.T) {
	bus := NewEventPublisher(nil)
	h := func(e *importFinished) {}
	bus.Subscribe(h)
	bus.Subscribe(func(e *otherEvent) {})
	bus.Unsubscribe(h)
	require.Equal(t, 1, bus.SubscribersCount())
	bus.Clear()
	require.Zero(t, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	require.True(t, MatchSignature(func(e *importFinished) {}, []interface{}{&importFinished{}}))
	require.False(t, MatchSignature(func(e *importFinished) {}, []interface{}{&otherEvent{}}))
	require.False(t, MatchSignature(func(e *importFinished) {}, []interface{}{}))
	require.False(t, MatchSignature(func(e *importFinished) {}, []interface{}{&importFinished{}, &importFinished{}}))
	require.True(t, MatchSignature(func(ctx context.Context) {}, []interface{}{context.Background()}))
	require.True(t, MatchSignature(func(e *importFinished) {}, []interface{}{nil}))
	require.False(t, MatchSignature("not a func", []interface{}{}))
}
