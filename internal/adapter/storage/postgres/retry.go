package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// WithSavepointRetry runs fn inside a savepoint on tx, retrying it up to
// attempts times when it fails with a unique constraint violation. The
// savepoint isolates each attempt so a conflict does not abort the outer
// transaction. Non-conflict errors abort immediately.
func WithSavepointRetry(ctx context.Context, tx pgx.Tx, name string, attempts int, fn func() error) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if _, err := tx.Exec(ctx, "SAVEPOINT "+name); err != nil {
			return fmt.Errorf("create savepoint %s: %w", name, err)
		}

		err := fn()
		if err == nil {
			if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT "+name); err != nil {
				return fmt.Errorf("release savepoint %s: %w", name, err)
			}
			return nil
		}

		if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			return fmt.Errorf("rollback to savepoint %s: %w", name, rbErr)
		}

		if !IsUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("savepoint retry %s exhausted after %d attempts: %w", name, attempts, lastErr)
}
