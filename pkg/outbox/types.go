package outbox

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message is the unit stored in the outbox table.
type Message struct {
	Topic   string
	EventID uuid.UUID
	Payload json.RawMessage
}

// Meta is the stable dispatch metadata handed to subscribers for idempotency.
type Meta struct {
	Table    pgx.Identifier
	Topic    string
	EventID  uuid.UUID
	Sequence int64
	Attempts int
}

// DispatchedMessage is the unit delivered by Relay to Dispatcher.
type DispatchedMessage struct {
	Meta    Meta
	Payload json.RawMessage
}

type Dispatcher interface {
	Dispatch(ctx context.Context, msg DispatchedMessage) error
}
