package handlers

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/inventory/modules/equipment/services"
	"github.com/iota-uz/inventory/pkg/outbox"
)

// ImportEventsHandler receives committed import summaries from the outbox relay.
type ImportEventsHandler struct {
	logger *logrus.Logger
}

func NewImportEventsHandler(logger *logrus.Logger) *ImportEventsHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportEventsHandler{logger: logger}
}

// Handle matches the eventbus dispatcher signature. Unknown topics are ignored.
// A payload that does not decode is not retried.
func (h *ImportEventsHandler) Handle(meta *outbox.Meta, topic string, payload json.RawMessage) error {
	if topic != services.TopicConsolidated && topic != services.TopicReconciled {
		return nil
	}
	var summary services.Summary
	if err := json.Unmarshal(payload, &summary); err != nil {
		h.logger.WithError(errors.Wrap(err, "decode import summary")).WithFields(logrus.Fields{
			"topic":    topic,
			"event_id": meta.EventID,
		}).Error("dropping import event")
		return nil
	}
	h.logger.WithFields(logrus.Fields{
		"topic":           topic,
		"event_id":        meta.EventID,
		"sequence":        meta.Sequence,
		"attempts":        meta.Attempts,
		"operation":       summary.Operation,
		"actor":           summary.Actor,
		"records":         summary.Records,
		"inserted":        summary.Inserted,
		"updated":         summary.Updated,
		"unchanged":       summary.Unchanged,
		"history_entries": summary.HistoryEntries,
	}).Info("import committed")
	return nil
}
