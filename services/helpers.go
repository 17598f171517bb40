package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/openbracket/tournament-engine/repositories"
)

const (
	conflictRetryAttempts = 3
	conflictRetryBackoff  = 100 * time.Millisecond
)

// runInTx wraps fn in a transaction with the usual rollback-on-error and
// rollback-on-panic handling.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// withConflictRetry re-runs a whole read-compute-write cycle when the store
// reports a conflicting concurrent write, with linear backoff between
// attempts. Anything other than a serialization failure is returned as is.
func withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= conflictRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !repositories.IsSerializationFailure(err) {
			return err
		}
		select {
		case <-time.After(time.Duration(attempt) * conflictRetryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w: %v", ErrConflictRetryExhausted, err)
}
