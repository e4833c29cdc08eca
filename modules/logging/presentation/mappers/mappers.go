package mappers

import (
	"encoding/json"
	"time"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/modules/logging/presentation/viewmodels"
)

func ActionLogToViewModel(log *actionlog.ActionLog) *viewmodels.ActionLog {
	if log == nil {
		return nil
	}

	var details any
	if len(log.Details) > 0 {
		details = json.RawMessage(log.Details)
	}

	return &viewmodels.ActionLog{
		ID:         log.ID,
		Actor:      log.Actor,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Method:     log.Method,
		Path:       log.Path,
		Details:    details,
		IP:         log.IP,
		UserAgent:  log.UserAgent,
		CreatedAt:  log.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func ActionLogsToViewModels(logs []*actionlog.ActionLog) []*viewmodels.ActionLog {
	out := make([]*viewmodels.ActionLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, ActionLogToViewModel(l))
	}
	return out
}
