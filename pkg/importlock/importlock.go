// Package importlock serializes import runs across server instances and CLI invocations.
package importlock

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iota-uz/inventory/pkg/composables"
)

var ErrLocked = errors.New("another import is already running")

type Release func(ctx context.Context) error

type Locker interface {
	// Acquire must be called inside the import transaction. Callers release only after it commits or rolls back.
	Acquire(ctx context.Context, name string) (Release, error)
}

func noopRelease(context.Context) error { return nil }

type postgresLocker struct{}

// NewPostgresLocker takes a transaction-scoped advisory lock, released on commit or rollback.
func NewPostgresLocker() Locker {
	return postgresLocker{}
}

func (postgresLocker) Acquire(ctx context.Context, name string) (Release, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	var ok bool
	if err := tx.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1::bigint)`, advisoryKey(name)).Scan(&ok); err != nil {
		return nil, errors.Wrap(err, "advisory lock")
	}
	if !ok {
		return nil, ErrLocked
	}
	return noopRelease, nil
}

func advisoryKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("importlock:" + name))
	return int64(h.Sum64())
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisLocker holds a SET NX key for at most ttl so a crashed holder cannot block imports forever.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisLocker{client: client, ttl: ttl}
}

func (l *redisLocker) Acquire(ctx context.Context, name string) (Release, error) {
	key := "inventory:importlock:" + name
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis lock")
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return errors.Wrap(err, "redis unlock")
		}
		return nil
	}, nil
}

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(redisURL string) *redis.Client {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	return redis.NewClient(opts)
}
