package models

import (
	"errors"
	"time"
)

const DateOnlyLayout = "2006-01-02"

var ErrInvalidDate = errors.New("date must be RFC 3339 or YYYY-MM-DD")

// ParseDate принимает RFC 3339 или YYYY-MM-DD и возвращает время в UTC.
// dateOnly сообщает, что время суток в строке отсутствовало.
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(DateOnlyLayout, s); err == nil {
		return t.UTC(), true, nil
	}
	return time.Time{}, false, ErrInvalidDate
}

// ParseLowerBound parses the start of a date range.
func ParseLowerBound(s string) (time.Time, error) {
	t, _, err := ParseDate(s)
	return t, err
}

// ParseUpperBound parses the inclusive end of a date range. A bare date
// covers the whole day.
func ParseUpperBound(s string) (time.Time, error) {
	t, dateOnly, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
