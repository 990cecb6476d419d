package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// dbtx abstracts *sql.DB and *sql.Tx so record operations can run both
// standalone and inside the nested-operations transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// now returns the current UTC time in the wire timestamp format.
func now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// fieldNamePattern restricts filter/sort field names to identifier segments
// joined by dots. Field names are interpolated into json_extract paths, so
// anything else is rejected before it reaches SQL.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

// jsonPath converts a validated field name to a json_extract path.
func jsonPath(field string) (string, error) {
	if !fieldNamePattern.MatchString(field) {
		return "", fmt.Errorf("invalid field name %q", field)
	}
	return "$." + field, nil
}

// escapeLike escapes LIKE wildcards so search terms match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// pluralize guesses the model name a relationship field points at:
// author_id -> authors, category_id -> categories.
func pluralize(name string) string {
	if strings.HasSuffix(name, "y") {
		return name[:len(name)-1] + "ies"
	}
	if strings.HasSuffix(name, "s") {
		return name + "es"
	}
	return name + "s"
}
