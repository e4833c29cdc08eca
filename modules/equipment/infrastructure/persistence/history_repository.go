package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/inventory/modules/equipment/domain/entities/history"
	"github.com/iota-uz/inventory/modules/equipment/infrastructure/persistence/models"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/repo"
)

var historyColumns = []string{"equipment_id", "field_name", "old_value", "new_value", "changed_by", "changed_at"}

type HistoryRepository struct{}

func NewHistoryRepository() history.Repository {
	return &HistoryRepository{}
}

// CreateMany appends entries with COPY. Entries are immutable once written.
func (r *HistoryRepository) CreateMany(ctx context.Context, entries []history.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		m := toDBHistory(e)
		if m.ChangedAt.IsZero() {
			m.ChangedAt = now
		}
		rows = append(rows, []any{m.EquipmentID, m.FieldName, m.OldValue, m.NewValue, m.ChangedBy, m.ChangedAt})
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"equipment_history"}, historyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, errors.Wrap(err, "copy equipment history")
	}
	return n, nil
}

func (r *HistoryRepository) List(ctx context.Context, params *history.FindParams) ([]history.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, equipment_id, field_name, old_value, new_value, changed_by, changed_at
		FROM equipment_history WHERE equipment_id = $1
		ORDER BY changed_at DESC, id DESC`
	var equipmentID uint
	if params != nil {
		equipmentID = params.EquipmentID
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}
	rows, err := tx.Query(ctx, query, equipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "query equipment history")
	}
	defer rows.Close()

	var out []history.Entry
	for rows.Next() {
		var m models.History
		if err := rows.Scan(&m.ID, &m.EquipmentID, &m.FieldName, &m.OldValue, &m.NewValue, &m.ChangedBy, &m.ChangedAt); err != nil {
			return nil, errors.Wrap(err, "scan equipment history")
		}
		out = append(out, toDomainHistory(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *HistoryRepository) Count(ctx context.Context, params *history.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var equipmentID uint
	if params != nil {
		equipmentID = params.EquipmentID
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM equipment_history WHERE equipment_id = $1`, equipmentID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count equipment history")
	}
	return count, nil
}
