package store

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// RetryConfig configures retries of transient database failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig suits interactive use: a locked SQLite file or a
// Postgres serialization failure usually clears within a few milliseconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		InitialWait: 20 * time.Millisecond,
		MaxWait:     500 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// retryWalletRepo is a decorator that retries transient errors with
// exponential backoff and jitter.
type retryWalletRepo struct {
	inner  WalletRepo
	config RetryConfig
}

// WithRetry wraps a WalletRepo with retry logic. Apply is safe to retry:
// an entry that did commit is reported as ErrDuplicateEntry on the next try.
func WithRetry(r WalletRepo, cfg RetryConfig) WalletRepo {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retryWalletRepo{inner: r, config: cfg}
}

func (r *retryWalletRepo) Balance(ctx context.Context, userID string) (Balance, error) {
	var b Balance
	err := r.do(ctx, func() error {
		var err error
		b, err = r.inner.Balance(ctx, userID)
		return err
	})
	return b, err
}

func (r *retryWalletRepo) Apply(ctx context.Context, e Entry) (*EventRecord, error) {
	var rec *EventRecord
	err := r.do(ctx, func() error {
		var err error
		rec, err = r.inner.Apply(ctx, e)
		return err
	})
	return rec, err
}

func (r *retryWalletRepo) History(ctx context.Context, userID string, opts QueryOpts) ([]EventRecord, error) {
	var out []EventRecord
	err := r.do(ctx, func() error {
		var err error
		out, err = r.inner.History(ctx, userID, opts)
		return err
	})
	return out, err
}

func (r *retryWalletRepo) do(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := range r.config.MaxAttempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}
	return lastErr
}

// backoff computes the wait duration for the given attempt.
func (r *retryWalletRepo) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// IsTransient reports whether err is a lock or serialization failure that
// may succeed when the operation is retried.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
			return true
		}
		return false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return true
		}
	}
	return false
}
