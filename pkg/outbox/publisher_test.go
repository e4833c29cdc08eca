package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type stubTx struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (s *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.queryRowFunc(ctx, sql, args...)
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

func TestPublisher_Enqueue(t *testing.T) {
	eventID := uuid.New()
	tx := &stubTx{queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
		require.Contains(t, sql, `INSERT INTO "equipment_outbox"`)
		require.Contains(t, sql, "ON CONFLICT (event_id)")
		require.Equal(t, "equipment.reconciled", args[0])
		require.Equal(t, eventID, args[2])
		return stubRow{scan: func(dest ...any) error {
			*dest[0].(*int64) = 17
			return nil
		}}
	}}

	p := NewPublisher(pgx.Identifier{"equipment_outbox"})
	seq, err := p.Enqueue(context.Background(), tx, Message{Topic: "equipment.reconciled", EventID: eventID, Payload: []byte(`{}`)})
	require.NoError(t, err)
	require.Equal(t, int64(17), seq)
}

func TestPublisher_EnqueueJSON(t *testing.T) {
	var payload json.RawMessage
	tx := &stubTx{queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
		payload = args[1].(json.RawMessage)
		return stubRow{scan: func(dest ...any) error {
			*dest[0].(*int64) = 1
			return nil
		}}
	}}

	p := NewPublisher(pgx.Identifier{"equipment_outbox"})
	id, err := p.EnqueueJSON(context.Background(), tx, "equipment.consolidated", map[string]int{"inserted": 2})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	require.JSONEq(t, `{"inserted":2}`, string(payload))
}

func TestPublisher_EnqueueValidates(t *testing.T) {
	p := NewPublisher(pgx.Identifier{"equipment_outbox"})
	_, err := p.Enqueue(context.Background(), &stubTx{}, Message{Topic: "x"})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = p.Enqueue(context.Background(), &stubTx{}, Message{EventID: uuid.New()})
	require.ErrorIs(t, err, ErrInvalidConfig)
}
