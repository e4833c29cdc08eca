package persistence

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/modules/logging/infrastructure/persistence/models"
)

func toDBActionLog(log *actionlog.ActionLog) *models.ActionLog {
	var entityID pgtype.Int8
	if log.EntityID != nil {
		entityID = pgtype.Int8{Int64: int64(*log.EntityID), Valid: true}
	}
	details := []byte(log.Details)
	if len(details) == 0 {
		details = []byte("{}")
	}
	return &models.ActionLog{
		ID:         log.ID,
		Actor:      log.Actor,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   entityID,
		Method:     log.Method,
		Path:       log.Path,
		Details:    details,
		UserAgent:  log.UserAgent,
		IP:         log.IP,
		CreatedAt:  log.CreatedAt,
	}
}

func toDomainActionLog(dbLog *models.ActionLog) *actionlog.ActionLog {
	var entityID *uint
	if dbLog.EntityID.Valid {
		id := uint(dbLog.EntityID.Int64)
		entityID = &id
	}
	return &actionlog.ActionLog{
		ID:         dbLog.ID,
		Actor:      dbLog.Actor,
		Action:     dbLog.Action,
		EntityType: dbLog.EntityType,
		EntityID:   entityID,
		Method:     dbLog.Method,
		Path:       dbLog.Path,
		Details:    dbLog.Details,
		UserAgent:  dbLog.UserAgent,
		IP:         dbLog.IP,
		CreatedAt:  dbLog.CreatedAt,
	}
}
