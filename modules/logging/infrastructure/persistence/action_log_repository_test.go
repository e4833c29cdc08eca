package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/pkg/constants"
)

func TestActionLogRepository_List_FiltersAndMapsRows(t *testing.T) {
	now := time.Now()
	entityID := uint(12)

	tx := &stubTx{
		queryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			require.Contains(t, sql, "FROM action_logs")
			require.Contains(t, sql, "actor = $1")
			require.Contains(t, sql, "entity_type = $2")
			require.Contains(t, sql, "entity_id = $3")
			require.Contains(t, sql, "LIMIT 10")
			require.Equal(t, []any{"admin", "equipment", int64(12)}, args)
			details := json.RawMessage(`{"changes":2}`)
			return &stubRows{data: [][]any{
				{uint(7), "admin", "equipment.update", "equipment", pgtype.Int8{Int64: 12, Valid: true}, "PUT", "/equipment/api/equipment/12", details, "ua", "1.1.1.1", now},
			}}, nil
		},
	}

	ctx := context.WithValue(context.Background(), constants.TxKey, tx)
	result, err := NewActionLogRepository().List(ctx, &actionlog.FindParams{
		Actor: "admin", EntityType: "equipment", EntityID: &entityID, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "equipment.update", result[0].Action)
	require.NotNil(t, result[0].EntityID)
	require.Equal(t, uint(12), *result[0].EntityID)
	require.JSONEq(t, `{"changes":2}`, string(result[0].Details))
	require.Equal(t, now, result[0].CreatedAt)
}

func TestActionLogRepository_Count_NoFilters(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "action_logs")
			require.Empty(t, args)
			return stubRow{
				scan: func(dest ...any) error {
					*dest[0].(*int64) = 8
					return nil
				},
			}
		},
	}

	ctx := context.WithValue(context.Background(), constants.TxKey, tx)
	count, err := NewActionLogRepository().Count(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, int64(8), count)
}

func TestActionLogRepository_Create_FillsDefaults(t *testing.T) {
	tx := &stubTx{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			require.Contains(t, sql, "INSERT INTO action_logs")
			require.Equal(t, "admin", args[0])
			require.Equal(t, pgtype.Int8{}, args[3])
			require.Equal(t, []byte("{}"), args[6])
			createdAt := args[9].(time.Time)
			require.False(t, createdAt.IsZero())

			return stubRow{
				scan: func(dest ...any) error {
					require.Len(t, dest, 2)
					*dest[0].(*uint) = 55
					*dest[1].(*time.Time) = createdAt
					return nil
				},
			}
		},
	}

	ctx := context.WithValue(context.Background(), constants.TxKey, tx)
	entry := &actionlog.ActionLog{Actor: "admin", Action: "import.consolidate"}
	require.NoError(t, NewActionLogRepository().Create(ctx, entry))
	require.Equal(t, uint(55), entry.ID)
	require.NotZero(t, entry.CreatedAt)
}

type stubTx struct {
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	var results pgx.BatchResults
	return results
}

func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if s.queryFunc == nil {
		return nil, errors.New("query not implemented")
	}
	return s.queryFunc(ctx, sql, args...)
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if s.queryRowFunc == nil {
		return stubRow{scan: func(dest ...any) error { return errors.New("query row not implemented") }}
	}
	return s.queryRowFunc(ctx, sql, args...)
}

type stubRows struct {
	data [][]any
	idx  int
	err  error
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return errors.New("no current row to scan")
	}
	row := r.data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("destination length %d does not match row length %d", len(dest), len(row))
	}
	for i, target := range dest {
		switch v := target.(type) {
		case *uint:
			*v = row[i].(uint)
		case *pgtype.Int8:
			*v = row[i].(pgtype.Int8)
		case *string:
			*v = row[i].(string)
		case *time.Time:
			*v = row[i].(time.Time)
		case *json.RawMessage:
			raw := row[i].(json.RawMessage)
			*v = raw
		case *[]byte:
			switch val := row[i].(type) {
			case []byte:
				*v = val
			case json.RawMessage:
				*v = []byte(val)
			default:
				return fmt.Errorf("unsupported []byte source %T", row[i])
			}
		default:
			return fmt.Errorf("unsupported scan target %T", target)
		}
	}
	return nil
}

func (r *stubRows) Values() ([]any, error) {
	if r.idx == 0 || r.idx > len(r.data) {
		return nil, errors.New("no current row")
	}
	return r.data[r.idx-1], nil
}

func (r *stubRows) RawValues() [][]byte { return nil }
func (r *stubRows) Err() error          { return r.err }
func (r *stubRows) Close()              {}
func (r *stubRows) CommandTag() pgconn.CommandTag {
	return pgconn.CommandTag{}
}
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return errors.New("scan not implemented")
	}
	return r.scan(dest...)
}
