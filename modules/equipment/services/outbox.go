package services

import (
	"encoding/json"

	"github.com/iota-uz/inventory/pkg/outbox"
)

// outboxMessage keys the message by run id, so a retried commit cannot publish twice.
func outboxMessage(topic string, summary Summary) outbox.Message {
	payload, _ := json.Marshal(summary)
	return outbox.Message{Topic: topic, EventID: summary.RunID, Payload: payload}
}
