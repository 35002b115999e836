package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, dateOnly, err := ParseDate("2024-01-15T08:34:12Z")
	require.NoError(t, err)
	assert.False(t, dateOnly)
	assert.Equal(t, time.Date(2024, 1, 15, 8, 34, 12, 0, time.UTC), got)

	got, _, err = ParseDate("2024-01-15T10:34:12+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 8, got.Hour())

	got, dateOnly, err = ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.True(t, dateOnly)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"", "15/01/2024", "2024-13-01", "yesterday"} {
		_, _, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestParseUpperBound(t *testing.T) {
	got, err := ParseUpperBound("2024-03-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 23, 59, 59, 999999999, time.UTC), got)

	got, err = ParseUpperBound("2024-03-03T12:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC), got)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("1200.50")
	require.NoError(t, err)
	assert.Equal(t, "1200.5", d.String())

	_, err = ParseAmount("-1")
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseAmount("ten")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
