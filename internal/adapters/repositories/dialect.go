package repositories

import (
	"strconv"
	"strings"
)

// rebind rewrites ? placeholders into the $n form Postgres expects.
// Queries are written once with ? and passed through rebind for the driver in use.
func rebind(driver, query string) string {
	if driver != "postgres" && driver != "pgx" {
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
