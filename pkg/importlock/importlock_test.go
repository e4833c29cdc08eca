package importlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/inventory/pkg/constants"
)

func TestRedisLocker_ExclusiveUntilReleased(t *testing.T) {
	mr := miniredis.RunT(t)
	locker := NewRedisLocker(NewRedisClient(mr.Addr()), time.Minute)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "equipment")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "equipment")
	require.ErrorIs(t, err, ErrLocked)

	other, err := locker.Acquire(ctx, "other")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	again, err := locker.Acquire(ctx, "equipment")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedisLocker_ExpiresAfterTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	locker := NewRedisLocker(NewRedisClient(mr.Addr()), time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "equipment")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	next, err := locker.Acquire(ctx, "equipment")
	require.NoError(t, err)
	// The stale holder must not delete the new holder's key.
	require.NoError(t, release(ctx))
	_, err = locker.Acquire(ctx, "equipment")
	require.ErrorIs(t, err, ErrLocked)
	require.NoError(t, next(ctx))
}

type lockTx struct {
	granted bool
	key     any
}

func (s *lockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (s *lockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (s *lockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *lockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (s *lockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.key = args[0]
	return lockRow{granted: s.granted}
}

type lockRow struct{ granted bool }

func (r lockRow) Scan(dest ...any) error {
	*dest[0].(*bool) = r.granted
	return nil
}

func TestPostgresLocker(t *testing.T) {
	tx := &lockTx{granted: true}
	ctx := context.WithValue(context.Background(), constants.TxKey, tx)

	release, err := NewPostgresLocker().Acquire(ctx, "equipment")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
	require.Equal(t, advisoryKey("equipment"), tx.key)

	tx.granted = false
	_, err = NewPostgresLocker().Acquire(ctx, "equipment")
	require.ErrorIs(t, err, ErrLocked)
}

func TestPostgresLocker_RequiresDatabase(t *testing.T) {
	_, err := NewPostgresLocker().Acquire(context.Background(), "equipment")
	require.Error(t, err)
}
