package util

import (
	"database/sql"
	"strconv"
	"time"
)

// NullStringFromValue creates a sql.NullString that is valid only for
// non-empty strings.
func NullStringFromValue(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ParseNullInt64NonNegative parses a string into sql.NullInt64, requiring a
// value of zero or more. Empty, unparsable, and negative input yield an
// invalid NullInt64.
func ParseNullInt64NonNegative(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	if val, err := strconv.ParseInt(s, 10, 64); err == nil && val >= 0 {
		return sql.NullInt64{Int64: val, Valid: true}
	}
	return sql.NullInt64{}
}

// ParseNullTime parses an RFC 3339 string into sql.NullTime. Empty and
// unparsable input yield an invalid NullTime.
func ParseNullTime(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return sql.NullTime{Time: t, Valid: true}
	}
	return sql.NullTime{}
}
