package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/modules/logging/infrastructure/persistence/models"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/repo"
)

type ActionLogRepository struct{}

func NewActionLogRepository() actionlog.Repository {
	return &ActionLogRepository{}
}

func (r *ActionLogRepository) List(ctx context.Context, params *actionlog.FindParams) ([]*actionlog.ActionLog, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	where, args := buildActionLogFilters(params)
	query := `
		SELECT id, actor, action, entity_type, entity_id, method, path, details, user_agent, ip, created_at
		FROM action_logs
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_at DESC, id DESC
	`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query action logs")
	}
	defer rows.Close()

	var results []*actionlog.ActionLog
	for rows.Next() {
		var row models.ActionLog
		if err := rows.Scan(
			&row.ID,
			&row.Actor,
			&row.Action,
			&row.EntityType,
			&row.EntityID,
			&row.Method,
			&row.Path,
			&row.Details,
			&row.UserAgent,
			&row.IP,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, toDomainActionLog(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ActionLogRepository) Count(ctx context.Context, params *actionlog.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildActionLogFilters(params)

	var count int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM action_logs
		WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count action logs")
	}
	return count, nil
}

func (r *ActionLogRepository) Create(ctx context.Context, log *actionlog.ActionLog) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	dbRow := toDBActionLog(log)
	if dbRow.CreatedAt.IsZero() {
		dbRow.CreatedAt = time.Now()
	}

	return tx.QueryRow(
		ctx,
		`INSERT INTO action_logs (actor, action, entity_type, entity_id, method, path, details, user_agent, ip, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		dbRow.Actor,
		dbRow.Action,
		dbRow.EntityType,
		dbRow.EntityID,
		dbRow.Method,
		dbRow.Path,
		dbRow.Details,
		dbRow.UserAgent,
		dbRow.IP,
		dbRow.CreatedAt,
	).Scan(&log.ID, &log.CreatedAt)
}

func buildActionLogFilters(params *actionlog.FindParams) ([]string, []interface{}) {
	where := []string{"1 = 1"}
	var args []interface{}
	if params == nil {
		return where, args
	}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if actor := strings.TrimSpace(params.Actor); actor != "" {
		add("actor = $%d", actor)
	}
	if action := strings.TrimSpace(params.Action); action != "" {
		add("action = $%d", action)
	}
	if et := strings.TrimSpace(params.EntityType); et != "" {
		add("entity_type = $%d", et)
	}
	if params.EntityID != nil {
		add("entity_id = $%d", int64(*params.EntityID))
	}
	if params.From != nil && !params.From.IsZero() {
		add("created_at >= $%d", *params.From)
	}
	if params.To != nil && !params.To.IsZero() {
		add("created_at <= $%d", *params.To)
	}
	return where, args
}
