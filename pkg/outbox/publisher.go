package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/inventory/pkg/repo"
)

type Publisher interface {
	Enqueue(ctx context.Context, tx repo.Tx, msg Message) (sequence int64, err error)
	EnqueueJSON(ctx context.Context, tx repo.Tx, topic string, payload any) (uuid.UUID, error)
}

type publisher struct {
	table pgx.Identifier
	m     *metrics
}

func NewPublisher(table pgx.Identifier) Publisher {
	return &publisher{table: table, m: getMetrics()}
}

// Enqueue stores msg in the caller's transaction so it becomes visible to the relay only on commit.
// Re-enqueueing the same event id returns the original sequence.
func (p *publisher) Enqueue(ctx context.Context, tx repo.Tx, msg Message) (int64, error) {
	if msg.EventID == uuid.Nil {
		return 0, invalidConfig("event_id is required")
	}
	if msg.Topic == "" {
		return 0, invalidConfig("topic is required")
	}
	if len(p.table) == 0 {
		return 0, invalidConfig("table is required")
	}

	q := fmt.Sprintf(
		`INSERT INTO %s (topic, payload, event_id, available_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (event_id) DO UPDATE SET event_id = EXCLUDED.event_id
		 RETURNING sequence`,
		p.table.Sanitize(),
	)

	var sequence int64
	if err := tx.QueryRow(ctx, q, msg.Topic, msg.Payload, msg.EventID).Scan(&sequence); err != nil {
		return 0, errors.Wrap(err, "outbox enqueue")
	}
	p.m.enqueueTotal.WithLabelValues(TableLabel(p.table), msg.Topic).Inc()
	return sequence, nil
}

func (p *publisher) EnqueueJSON(ctx context.Context, tx repo.Tx, topic string, payload any) (uuid.UUID, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "outbox marshal payload")
	}
	eventID := uuid.New()
	if _, err := p.Enqueue(ctx, tx, Message{Topic: topic, EventID: eventID, Payload: body}); err != nil {
		return uuid.Nil, err
	}
	return eventID, nil
}
