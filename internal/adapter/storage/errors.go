package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var (
	ErrStoreConnection = errors.New("store connection failure")
	ErrStoreQuery      = errors.New("store query failure")
)

// classify tags a driver error as a connection or query failure. Context
// errors pass through untouched so callers can still see the deadline.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStoreConnection), errors.Is(err, ErrStoreQuery):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case isConnectionError(err):
		return fmt.Errorf("%w: %w", ErrStoreConnection, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreQuery, err)
	}
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1040, 1045, 1053, 2002, 2003, 2006, 2013:
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "28") || pgErr.Code == "57P01"
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := pqErr.Code.Class()
		return class == "08" || class == "28" || pqErr.Code == "57P01"
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
