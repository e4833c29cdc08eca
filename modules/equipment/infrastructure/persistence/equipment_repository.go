package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/inventory/modules/equipment/domain/aggregates/equipment"
	"github.com/iota-uz/inventory/pkg/composables"
	"github.com/iota-uz/inventory/pkg/repo"
)

const uniqueViolation = "23505"

type EquipmentRepository struct{}

func NewEquipmentRepository() equipment.Repository {
	return &EquipmentRepository{}
}

func (r *EquipmentRepository) Count(ctx context.Context, params *equipment.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildEquipmentFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM equipment WHERE `+strings.Join(where, " AND "), args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "count equipment")
	}
	return count, nil
}

func (r *EquipmentRepository) GetPaginated(ctx context.Context, params *equipment.FindParams) ([]equipment.Equipment, error) {
	where, args := buildEquipmentFilters(params)
	query := `SELECT ` + equipmentSelectColumns + ` FROM equipment WHERE ` + strings.Join(where, " AND ")
	query += " ORDER BY " + orderBy(params)
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}
	return r.queryEquipment(ctx, query, args...)
}

func (r *EquipmentRepository) GetAll(ctx context.Context) ([]equipment.Equipment, error) {
	return r.queryEquipment(ctx, `SELECT `+equipmentSelectColumns+` FROM equipment ORDER BY id`)
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id uint) (equipment.Equipment, error) {
	return r.queryOne(ctx, `SELECT `+equipmentSelectColumns+` FROM equipment WHERE id = $1`, id)
}

func (r *EquipmentRepository) GetBySerial(ctx context.Context, serial string) (equipment.Equipment, error) {
	key := equipment.MergeKey(serial)
	if key == "" {
		return equipment.Equipment{}, equipment.ErrNotFound
	}
	return r.queryOne(ctx, `SELECT `+equipmentSelectColumns+` FROM equipment WHERE merge_key = $1`, key)
}

func (r *EquipmentRepository) Create(ctx context.Context, e equipment.Equipment) (equipment.Equipment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return equipment.Equipment{}, err
	}
	m := toDBEquipment(e)
	if m.ApprovalStatus == "" {
		m.ApprovalStatus = equipment.ApprovalApproved
	}

	columns := insertColumns()
	placeholders := make([]string, len(columns))
	args := make([]any, 0, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	for _, v := range m.Values {
		args = append(args, v)
	}
	args = append(args, equipment.MergeKey(e.Serial()), m.ApprovalStatus, m.CreatedBy)

	query := `INSERT INTO equipment (` + strings.Join(columns, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		RETURNING ` + equipmentSelectColumns
	out := newDBEquipment()
	if err := tx.QueryRow(ctx, query, args...).Scan(scanTargets(out)...); err != nil {
		return equipment.Equipment{}, mapWriteError(err, "create equipment")
	}
	return toDomainEquipment(out), nil
}

// Update writes only the fields present on changes and bumps updated_at.
func (r *EquipmentRepository) Update(ctx context.Context, id uint, changes equipment.Record) (equipment.Equipment, error) {
	if changes.Len() == 0 {
		return r.GetByID(ctx, id)
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return equipment.Equipment{}, err
	}

	fields := changes.Fields()
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	args = append(args, id)
	for i, f := range fields {
		sets = append(sets, fmt.Sprintf("%s = $%d", f.Column(), i+2))
		args = append(args, toText(changes, f))
	}
	if changes.Has(equipment.FieldSerial) {
		args = append(args, equipment.MergeKey(changes.Serial()))
		sets = append(sets, fmt.Sprintf("merge_key = $%d", len(args)))
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE equipment SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + equipmentSelectColumns
	out := newDBEquipment()
	if err := tx.QueryRow(ctx, query, args...).Scan(scanTargets(out)...); err != nil {
		return equipment.Equipment{}, mapWriteError(err, "update equipment")
	}
	return toDomainEquipment(out), nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete equipment")
	}
	if tag.RowsAffected() == 0 {
		return equipment.ErrNotFound
	}
	return nil
}

// insertColumns lists the written columns. merge_key is computed with equipment.MergeKey so lookups
// and the unique index agree on every serial.
func insertColumns() []string {
	return append(append([]string{}, fieldColumns...), "merge_key", "approval_status", "created_by")
}

// ReplaceAll clears the table and bulk-loads items with COPY. Callers run it inside a transaction.
func (r *EquipmentRepository) ReplaceAll(ctx context.Context, items []equipment.Equipment) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM equipment`); err != nil {
		return 0, errors.Wrap(err, "clear equipment")
	}
	if len(items) == 0 {
		return 0, nil
	}

	columns := insertColumns()
	rows := make([][]any, 0, len(items))
	for _, e := range items {
		m := toDBEquipment(e)
		if m.ApprovalStatus == "" {
			m.ApprovalStatus = equipment.ApprovalApproved
		}
		row := make([]any, 0, len(columns))
		for _, v := range m.Values {
			row = append(row, v)
		}
		rows = append(rows, append(row, equipment.MergeKey(e.Serial()), m.ApprovalStatus, m.CreatedBy))
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"equipment"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, mapWriteError(err, "copy equipment")
	}
	return n, nil
}

func (r *EquipmentRepository) queryOne(ctx context.Context, query string, args ...any) (equipment.Equipment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return equipment.Equipment{}, err
	}
	m := newDBEquipment()
	if err := tx.QueryRow(ctx, query, args...).Scan(scanTargets(m)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return equipment.Equipment{}, equipment.ErrNotFound
		}
		return equipment.Equipment{}, errors.Wrap(err, "get equipment")
	}
	return toDomainEquipment(m), nil
}

func (r *EquipmentRepository) queryEquipment(ctx context.Context, query string, args ...any) ([]equipment.Equipment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query equipment")
	}
	defer rows.Close()

	var out []equipment.Equipment
	for rows.Next() {
		m := newDBEquipment()
		if err := rows.Scan(scanTargets(m)...); err != nil {
			return nil, errors.Wrap(err, "scan equipment")
		}
		out = append(out, toDomainEquipment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func buildEquipmentFilters(params *equipment.FindParams) ([]string, []any) {
	where := []string{"1 = 1"}
	var args []any
	if params == nil {
		return where, args
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		args = append(args, "%"+q+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(serial ILIKE $%d OR equipamento ILIKE $%d OR usuario_atual ILIKE $%d)", n, n, n))
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	return where, args
}

func orderBy(params *equipment.FindParams) string {
	if params == nil {
		return "id"
	}
	switch params.SortBy {
	case equipment.SortBySerial:
		return "merge_key"
	case equipment.SortByUpdatedAt:
		return "updated_at DESC, id"
	default:
		return "id"
	}
}

func mapWriteError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return equipment.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return equipment.ErrDuplicateSerial
	}
	return errors.Wrap(err, op)
}
