package db

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmrate/backend/internal/logging"
)

const (
	defaultMaxRetries  = 3
	defaultBaseBackoff = 100 * time.Millisecond
	defaultMaxBackoff  = 3 * time.Second
)

var retryablePgErrorCodes = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

// Beginner starts transactions. Both *pgxpool.Pool and *pgxpool.Conn satisfy it.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// RetryPolicy bounds how often a transaction is retried after a transient failure.
type RetryPolicy struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = defaultBaseBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = defaultMaxBackoff
	}
	return p
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	backoff := time.Duration(math.Pow(2, float64(attempt-1))) * p.BaseBackoff
	if backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}
	return backoff
}

// RunInTx executes fn inside a serializable transaction, committing when fn returns
// nil and rolling back otherwise. Serialization failures and deadlocks are retried
// with capped exponential backoff; fn must therefore be safe to run more than once.
func RunInTx(ctx context.Context, b Beginner, policy RetryPolicy, fn func(pgx.Tx) error) error {
	policy = policy.withDefaults()

	var attempt int
	for attempt = 0; attempt < policy.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(policy.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			timer.Stop()
		}

		err := runOnce(ctx, b, fn)
		if err == nil {
			return nil
		}
		if ShouldRetry(err) && attempt < policy.MaxRetries-1 {
			logging.FromContext(ctx).Warn("retrying transaction",
				"attempt", attempt+1,
				"max_attempts", policy.MaxRetries,
				"error", err,
			)
			continue
		}
		return err
	}

	return fmt.Errorf("run transaction: exceeded max retries (%d)", attempt)
}

func runOnce(ctx context.Context, b Beginner, fn func(pgx.Tx) error) error {
	tx, err := b.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ShouldRetry reports whether err is a transient failure worth retrying.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if _, ok := retryablePgErrorCodes[pgErr.Code]; ok {
			return true
		}
	}

	return false
}
