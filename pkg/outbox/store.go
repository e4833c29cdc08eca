package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type claimed struct {
	ID       uuid.UUID
	Topic    string
	Payload  []byte
	EventID  uuid.UUID
	Sequence int64
	Attempts int
}

// store is the relay's view of the outbox table.
type store interface {
	claim(ctx context.Context, now, lockCutoff time.Time, maxAttempts, limit int) ([]claimed, error)
	ack(ctx context.Context, id uuid.UUID) error
	nack(ctx context.Context, id uuid.UUID, lastError string, nextAvailable time.Time) error
	dead(ctx context.Context, id uuid.UUID, lastError string) error
	pending(ctx context.Context) (int64, error)
	purge(ctx context.Context, publishedBefore time.Time) (int64, error)
}

type pgStore struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
}

func (s *pgStore) claim(ctx context.Context, now, lockCutoff time.Time, maxAttempts, limit int) (items []claimed, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tableName := s.table.Sanitize()
	rows, err := tx.Query(ctx, fmt.Sprintf(
		`SELECT id, topic, payload, event_id, sequence, attempts
		   FROM %s
		  WHERE published_at IS NULL
		    AND available_at <= $1
		    AND attempts < $2
		    AND (locked_at IS NULL OR locked_at < $3)
		  ORDER BY available_at, sequence
		  LIMIT $4
		  FOR UPDATE SKIP LOCKED`,
		tableName,
	), now, maxAttempts, lockCutoff, limit)
	if err != nil {
		return nil, errors.Wrap(err, "outbox claim select")
	}
	var ids []uuid.UUID
	for rows.Next() {
		var c claimed
		if err := rows.Scan(&c.ID, &c.Topic, &c.Payload, &c.EventID, &c.Sequence, &c.Attempts); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "outbox claim scan")
		}
		c.Attempts++
		items = append(items, c)
		ids = append(ids, c.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "outbox claim rows")
	}

	if len(ids) > 0 {
		update := fmt.Sprintf(`UPDATE %s SET locked_at = $1, attempts = attempts + 1 WHERE id = ANY($2)`, tableName)
		if _, err := tx.Exec(ctx, update, now, pgtype.FlatArray[uuid.UUID](ids)); err != nil {
			return nil, errors.Wrap(err, "outbox claim update")
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *pgStore) ack(ctx context.Context, id uuid.UUID) error {
	q := fmt.Sprintf(
		`UPDATE %s SET published_at = now(), locked_at = NULL, last_error = NULL
		  WHERE id = $1 AND published_at IS NULL`,
		s.table.Sanitize(),
	)
	if _, err := s.pool.Exec(ctx, q, id); err != nil {
		return errors.Wrap(err, "outbox ack")
	}
	return nil
}

func (s *pgStore) nack(ctx context.Context, id uuid.UUID, lastError string, nextAvailable time.Time) error {
	q := fmt.Sprintf(
		`UPDATE %s SET locked_at = NULL, last_error = $2, available_at = $3
		  WHERE id = $1 AND published_at IS NULL`,
		s.table.Sanitize(),
	)
	if _, err := s.pool.Exec(ctx, q, id, lastError, nextAvailable); err != nil {
		return errors.Wrap(err, "outbox nack")
	}
	return nil
}

func (s *pgStore) dead(ctx context.Context, id uuid.UUID, lastError string) error {
	q := fmt.Sprintf(
		`UPDATE %s SET locked_at = NULL, last_error = $2, available_at = now()
		  WHERE id = $1 AND published_at IS NULL`,
		s.table.Sanitize(),
	)
	if _, err := s.pool.Exec(ctx, q, id, lastError); err != nil {
		return errors.Wrap(err, "outbox dead")
	}
	return nil
}

func (s *pgStore) pending(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf(`SELECT count(*) FROM %s WHERE published_at IS NULL`, s.table.Sanitize())
	if err := s.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "outbox pending count")
	}
	return n, nil
}

func (s *pgStore) purge(ctx context.Context, publishedBefore time.Time) (int64, error) {
	q := fmt.Sprintf(`DELETE FROM %s WHERE published_at IS NOT NULL AND published_at < $1`, s.table.Sanitize())
	tag, err := s.pool.Exec(ctx, q, publishedBefore)
	if err != nil {
		return 0, errors.Wrap(err, "outbox purge")
	}
	return tag.RowsAffected(), nil
}
