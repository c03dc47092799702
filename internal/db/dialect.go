package db

import (
	"strconv"
	"strings"
)

// Dialect identifies the SQL flavour a repository talks to. Queries are written with Postgres
// $N placeholders and rebound for SQLite.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Rebind rewrites $N placeholders for the dialect. SQLite receives ?N, which keeps the
// positional meaning when a placeholder is reused within one statement.
func (d Dialect) Rebind(query string) string {
	if d != SQLite {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && isDigit(query[i+1]) {
			j := i + 1
			for j < len(query) && isDigit(query[j]) {
				j++
			}
			n, _ := strconv.Atoi(query[i+1 : j])
			b.WriteByte('?')
			b.WriteString(strconv.Itoa(n))
			i = j - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (d Dialect) String() string {
	if d == SQLite {
		return "sqlite"
	}
	return "postgres"
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
