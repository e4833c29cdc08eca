package outbox

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Relay polls the outbox table and hands committed messages to a Dispatcher.
// Failed dispatches are retried with exponential backoff until MaxAttempts.
type Relay struct {
	store      store
	table      pgx.Identifier
	dispatcher Dispatcher
	opts       RelayOptions

	m          *metrics
	tableLabel string
}

func NewRelay(pool *pgxpool.Pool, table pgx.Identifier, dispatcher Dispatcher, opts RelayOptions) (*Relay, error) {
	if pool == nil {
		return nil, invalidConfig("pool is required")
	}
	return newRelay(&pgStore{pool: pool, table: table}, table, dispatcher, opts)
}

func newRelay(s store, table pgx.Identifier, dispatcher Dispatcher, opts RelayOptions) (*Relay, error) {
	if len(table) == 0 {
		return nil, invalidConfig("table is required")
	}
	if dispatcher == nil {
		return nil, invalidConfig("dispatcher is required")
	}
	opts.setDefaults()
	return &Relay{
		store:      s,
		table:      table,
		dispatcher: dispatcher,
		opts:       opts,
		m:          getMetrics(),
		tableLabel: TableLabel(table),
	}, nil
}

// Run blocks until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.processOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			r.opts.Logger.WithError(err).Warn("outbox: process tick failed")
		}
		r.housekeeping(ctx)
	}
}

func (r *Relay) housekeeping(ctx context.Context) {
	if n, err := r.store.pending(ctx); err == nil {
		r.m.pending.WithLabelValues(r.tableLabel).Set(float64(n))
	} else {
		r.opts.Logger.WithError(err).Debug("outbox: observe queue depth failed")
	}
	if r.opts.Retention <= 0 {
		return
	}
	n, err := r.store.purge(ctx, time.Now().Add(-r.opts.Retention))
	if err != nil {
		r.opts.Logger.WithError(err).Debug("outbox: purge failed")
		return
	}
	r.m.purgedTotal.WithLabelValues(r.tableLabel).Add(float64(n))
}

func (r *Relay) processOnce(ctx context.Context) error {
	now := time.Now()
	items, err := r.store.claim(ctx, now, now.Add(-r.opts.LockTTL), r.opts.MaxAttempts, r.opts.BatchSize)
	if err != nil {
		return err
	}

	for _, c := range items {
		dispatchCtx, cancel := context.WithTimeout(ctx, r.opts.DispatchTimeout)
		start := time.Now()
		err := r.dispatcher.Dispatch(dispatchCtx, DispatchedMessage{
			Meta: Meta{
				Table:    r.table,
				Topic:    c.Topic,
				EventID:  c.EventID,
				Sequence: c.Sequence,
				Attempts: c.Attempts,
			},
			Payload: c.Payload,
		})
		cancel()
		latency := time.Since(start)

		logger := r.opts.Logger.WithFields(logrus.Fields{
			"table":    r.tableLabel,
			"topic":    c.Topic,
			"event_id": c.EventID.String(),
			"sequence": c.Sequence,
			"attempts": c.Attempts,
		})

		if err == nil {
			r.recordDispatch(c.Topic, "success", latency)
			if ackErr := r.store.ack(ctx, c.ID); ackErr != nil {
				logger.WithError(ackErr).Warn("outbox: ack failed")
			}
			continue
		}

		r.recordDispatch(c.Topic, "failure", latency)
		lastErr := truncateError(err, r.opts.LastErrorMaxLen)

		if c.Attempts >= r.opts.MaxAttempts {
			r.m.deadTotal.WithLabelValues(r.tableLabel, c.Topic).Inc()
			if deadErr := r.store.dead(ctx, c.ID, lastErr); deadErr != nil {
				logger.WithError(deadErr).Warn("outbox: dead update failed")
			}
			continue
		}

		next := time.Now().Add(backoff(c.Attempts, r.opts.MaxBackoff) + jitter(r.opts.Rand, r.opts.JitterMax))
		if nackErr := r.store.nack(ctx, c.ID, lastErr, next); nackErr != nil {
			logger.WithError(nackErr).Warn("outbox: nack failed")
		}
	}
	return nil
}

func (r *Relay) recordDispatch(topic, result string, latency time.Duration) {
	r.m.dispatchTotal.WithLabelValues(r.tableLabel, topic, result).Inc()
	r.m.dispatchLatency.WithLabelValues(r.tableLabel, topic, result).Observe(latency.Seconds())
}
