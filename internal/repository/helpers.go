package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is used for every timestamp column.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(column, s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// nullableString returns nil (SQL NULL) for an absent value.
func nullableString(s string, present bool) interface{} {
	if !present {
		return nil
	}
	return s
}

// nullableInt returns nil (SQL NULL) for an absent value.
func nullableInt(v int, present bool) interface{} {
	if !present {
		return nil
	}
	return v
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

func stringOrEmpty(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}
