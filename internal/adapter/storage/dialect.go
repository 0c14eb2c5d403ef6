package storage

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectMySQL
)

// DialectFor maps a database/sql driver name to its SQL dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return 0, fmt.Errorf("unsupported store driver %q", driver)
	}
}

func (d Dialect) String() string {
	if d == DialectMySQL {
		return "mysql"
	}
	return "postgres"
}

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
