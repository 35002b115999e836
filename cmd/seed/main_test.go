package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_SeedsOnce(t *testing.T) {
	args := []string{"-backend", "sqlite", "-db", filepath.Join(t.TempDir(), "seed.db")}

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	require.NoError(t, run(args, stdout, stderr))
	assert.Contains(t, stdout.String(), "Seeded 4 users and 10 transactions")
	assert.Contains(t, stdout.String(), "admin")

	stdout.Reset()
	require.NoError(t, run(args, stdout, stderr))
	assert.Contains(t, stdout.String(), "nothing to seed")
}

func TestRun_UnknownBackend(t *testing.T) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	err := run([]string{"-backend", "redis"}, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown store backend "redis"`)
}
