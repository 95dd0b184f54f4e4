// Package repository holds the raw SQL access for the booking core.  Every
// repository wraps a *sql.DB; methods that must join a checkout transaction
// take a DBTX so they run the same statement against either the pool or an
// open *sql.Tx.
package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"
)

// Sentinel errors returned by the repositories.  Handlers and services
// compare against them with errors.Is.
var (
    ErrPriceNotFound       = errors.New("price not found")
    ErrPromotionNotFound   = errors.New("promotion not found")
    ErrPromotionSent       = errors.New("promotion already sent")
    ErrDuplicateRedemption = errors.New("promotion already redeemed")
    ErrSeatTaken           = errors.New("seat already taken")
    ErrCardNotFound        = errors.New("payment card not found")
    ErrUserNotFound        = errors.New("user not found")
    ErrShowNotFound        = errors.New("show not found")
)

// ErrConflict is returned when an insert collides with a unique key that
// has no more specific meaning.
var ErrConflict = errors.New("conflict")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique or primary key violation.
func isDuplicateKey(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// placeholders returns "(?, ?, ...)" with n markers.
func placeholders(n int) string {
    if n <= 0 {
        return "()"
    }
    b := make([]byte, 0, 2+3*n)
    b = append(b, '(')
    for i := 0; i < n; i++ {
        if i > 0 {
            b = append(b, ", "...)
        }
        b = append(b, '?')
    }
    return string(append(b, ')'))
}
