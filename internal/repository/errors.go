// Package repository defines the MySQL-backed store used by the booking
// engine.  Repositories translate driver errors into the sentinel values
// below so that higher layers never inspect driver types.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/train-seat-reservation/internal/booking"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = booking.ErrNotFound

// ErrLockConflict is returned when MySQL aborts a statement with a deadlock
// or a lock wait timeout.  The whole transaction has to be retried.
var ErrLockConflict = booking.ErrLockConflict

// ErrDuplicate is returned when an insert violates a unique key.
var ErrDuplicate = errors.New("duplicate entry")

// MySQL server error numbers handled by translate.
const (
	erDupEntry        = 1062
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// translate maps driver errors onto the package sentinels.  Errors that
// need no translation are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erLockDeadlock, erLockWaitTimeout:
			return fmt.Errorf("%w: %v", ErrLockConflict, err)
		case erDupEntry:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const dateLayout = "2006-01-02"

// serviceDate rebuilds a DATE column value as midnight in Tokyo.  The
// driver returns DATE values in the connection location, so only the
// calendar fields are kept.
func serviceDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, booking.Tokyo)
}

// placeholders returns "?,?,?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
