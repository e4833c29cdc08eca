package eventbus

import (
	"context"

	"github.com/iota-uz/inventory/pkg/eventbus"
	"github.com/iota-uz/inventory/pkg/outbox"
)

// Dispatcher forwards relayed outbox messages to in-process subscribers.
// Subscribers take (*outbox.Meta, string, json.RawMessage) and may return an error to request a retry.
type Dispatcher struct {
	bus eventbus.EventBus
}

func New(bus eventbus.EventBus) *Dispatcher {
	return &Dispatcher{bus: bus}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg outbox.DispatchedMessage) error {
	meta := msg.Meta
	return d.bus.PublishE(&meta, meta.Topic, msg.Payload)
}
