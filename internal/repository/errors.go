// Package repository implements the service ports on MySQL.  Driver
// errors are translated here so that the layers above only ever see the
// sentinels of the domain package.
package repository

import (
    "database/sql"
    "errors"
    "fmt"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/hotel-booking-engine/internal/domain"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// translate maps sql.ErrNoRows to domain.ErrRecordNotFound and unique
// violations to domain.ErrDuplicateKey, keeping the driver error for
// logging.  Other errors are wrapped with op.
func translate(op string, err error) error {
    switch {
    case err == nil:
        return nil
    case errors.Is(err, sql.ErrNoRows):
        return domain.ErrRecordNotFound
    case isDuplicateKey(err):
        return fmt.Errorf("%s: %w: %v", op, domain.ErrDuplicateKey, err)
    default:
        return fmt.Errorf("%s: %w", op, err)
    }
}
