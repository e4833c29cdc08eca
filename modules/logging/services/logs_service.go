package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
)

type LogsService struct {
	actionRepo actionlog.Repository
}

func NewLogsService(actionRepo actionlog.Repository) *LogsService {
	return &LogsService{
		actionRepo: actionRepo,
	}
}

func (s *LogsService) ListActionLogs(
	ctx context.Context,
	params *actionlog.FindParams,
) ([]*actionlog.ActionLog, int64, error) {
	if params == nil {
		params = &actionlog.FindParams{}
	}

	logs, err := s.actionRepo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.actionRepo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}

func (s *LogsService) CreateActionLog(ctx context.Context, log *actionlog.ActionLog) error {
	if log == nil {
		return errors.New("action log payload is required")
	}
	if strings.TrimSpace(log.Actor) == "" || strings.TrimSpace(log.Action) == "" {
		return errors.New("action log requires an actor and an action")
	}
	return s.actionRepo.Create(ctx, log)
}

// Audit writes one line inside the transaction bound to ctx, if any. details is stored as JSON.
func (s *LogsService) Audit(ctx context.Context, actor, action, entityType string, entityID *uint, details any) error {
	var raw json.RawMessage
	if details != nil {
		var err error
		raw, err = json.Marshal(details)
		if err != nil {
			return err
		}
	}
	return s.CreateActionLog(ctx, &actionlog.ActionLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		CreatedAt:  time.Now(),
	})
}
