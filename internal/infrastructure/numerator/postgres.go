// Package numerator provides the serial counter allocators behind
// core/numerator.Allocator: a PostgreSQL one using row locks and an in-memory
// one for tests and offline tooling.
package numerator

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"numbering/internal/core/id"
	corenumerator "numbering/internal/core/numerator"
	"numbering/internal/infrastructure/storage/postgres"
	"numbering/pkg/logger"
)

var tracer = otel.Tracer("numbering/numerator")

const (
	lockCounterSQL = `
		SELECT current_value FROM serial_counters
		WHERE format_setting_id = $1 AND context_key = $2
		FOR UPDATE`

	seedCounterSQL = `
		INSERT INTO serial_counters (format_setting_id, context_key, current_value)
		VALUES ($1, $2, $3)`

	advanceCounterSQL = `
		UPDATE serial_counters
		SET current_value = current_value + $3, updated_at = now()
		WHERE format_setting_id = $1 AND context_key = $2
		RETURNING current_value`
)

var _ corenumerator.Allocator = (*PostgresAllocator)(nil)

// PostgresAllocator advances rows of serial_counters under SELECT ... FOR UPDATE.
// The row lock is held until the caller's transaction ends, so concurrent
// allocations for the same context serialize and never share a value.
type PostgresAllocator struct {
	txm *postgres.TxManager
}

// NewPostgresAllocator creates a PostgreSQL allocator.
func NewPostgresAllocator(txm *postgres.TxManager) *PostgresAllocator {
	return &PostgresAllocator{txm: txm}
}

// Allocate implements corenumerator.Allocator. Without a transaction in ctx it
// opens its own, which makes the allocation durable on return.
func (a *PostgresAllocator) Allocate(ctx context.Context, formatID id.ID, reqs []corenumerator.Request) (corenumerator.Values, error) {
	if !a.txm.InTransaction(ctx) {
		var out corenumerator.Values
		err := a.txm.RunInTransaction(ctx, func(ctx context.Context) error {
			var err error
			out, err = a.Allocate(ctx, formatID, reqs)
			return err
		})
		return out, err
	}

	reqs = corenumerator.Normalize(reqs)

	ctx, span := tracer.Start(ctx, "numerator.allocate",
		trace.WithAttributes(
			attribute.String(logger.KeyFormatID, formatID.String()),
			attribute.Int("contexts", len(reqs)),
		))
	defer span.End()

	out := make(corenumerator.Values, len(reqs))
	for _, r := range reqs {
		v, err := a.advance(ctx, formatID, r)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "allocation failed")
			return nil, fmt.Errorf("allocate %q: %w", r.ContextKey, err)
		}
		out[r.ContextKey] = v
	}

	logger.Debug(ctx, "serial counters advanced", "values", out)
	return out, nil
}

// advance locks (or seeds) one counter row and adds Step to it.
func (a *PostgresAllocator) advance(ctx context.Context, formatID id.ID, r corenumerator.Request) (int64, error) {
	if r.Step <= 0 {
		return 0, fmt.Errorf("step must be positive, got %d", r.Step)
	}

	found, err := a.lock(ctx, formatID, r.ContextKey)
	if err != nil {
		return 0, err
	}
	if !found {
		if err := a.seed(ctx, formatID, r); err != nil {
			return 0, err
		}
	}

	var next int64
	err = a.txm.GetQuerier(ctx).QueryRow(ctx, advanceCounterSQL, formatID, r.ContextKey, r.Step).Scan(&next)
	if postgres.IsNumericOutOfRange(err) {
		return 0, fmt.Errorf("advance counter: %w", corenumerator.ErrCounterExhausted)
	}
	if err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}
	return next, nil
}

func (a *PostgresAllocator) lock(ctx context.Context, formatID id.ID, key string) (bool, error) {
	var current int64
	err := a.txm.GetQuerier(ctx).QueryRow(ctx, lockCounterSQL, formatID, key).Scan(&current)
	if postgres.IsNoRows(err) {
		return false, nil
	}
	if postgres.IsLockTimeout(err) {
		return false, fmt.Errorf("lock counter %q: timed out waiting for a concurrent allocation: %w", key, err)
	}
	if err != nil {
		return false, fmt.Errorf("lock counter: %w", err)
	}
	return true, nil
}

// seed inserts the row at StartFrom. The insert runs in a savepoint: losing
// the first-insert race to another transaction raises 23505, which would
// otherwise abort ours. The loser waits on the winner's row lock instead.
func (a *PostgresAllocator) seed(ctx context.Context, formatID id.ID, r corenumerator.Request) error {
	err := a.txm.RunInSavepoint(ctx, func(ctx context.Context) error {
		_, err := a.txm.GetQuerier(ctx).Exec(ctx, seedCounterSQL, formatID, r.ContextKey, r.StartFrom)
		return err
	})
	if err == nil {
		return nil
	}
	if !postgres.IsUniqueViolation(err) {
		return fmt.Errorf("seed counter: %w", err)
	}

	logger.Debug(ctx, "counter seeded concurrently, waiting for row lock",
		logger.KeyContextKey, r.ContextKey)

	found, err := a.lock(ctx, formatID, r.ContextKey)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("counter %q vanished after concurrent seed", r.ContextKey)
	}
	return nil
}

// Current returns the stored value of one counter, or false if it was never
// seeded. It takes no lock.
func (a *PostgresAllocator) Current(ctx context.Context, formatID id.ID, key string) (int64, bool, error) {
	var current int64
	err := a.txm.GetQuerier(ctx).QueryRow(ctx,
		`SELECT current_value FROM serial_counters WHERE format_setting_id = $1 AND context_key = $2`,
		formatID, key).Scan(&current)
	if postgres.IsNoRows(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read counter: %w", err)
	}
	return current, true, nil
}
