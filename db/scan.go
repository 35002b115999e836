package db

import (
	"fmt"
	"time"
)

// timeValue читает время и из TIMESTAMPTZ (PostgreSQL), и из TEXT (SQLite).
type timeValue struct {
	dst *time.Time
}

func (v timeValue) Scan(src any) error {
	switch s := src.(type) {
	case time.Time:
		*v.dst = s.UTC()
	case string:
		return v.parse(s)
	case []byte:
		return v.parse(string(s))
	case nil:
		*v.dst = time.Time{}
	default:
		return fmt.Errorf("unsupported time value %T", src)
	}
	return nil
}

func (v timeValue) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse time %q: %w", s, err)
	}
	*v.dst = t.UTC()
	return nil
}
