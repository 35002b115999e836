package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemopss/fin-ng/backend/api"
	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/db"
	"github.com/nemopss/fin-ng/backend/seed"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage, err := db.NewSQLiteStorage(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	_, err = seed.Load(context.Background(), storage)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(storage, auth.NewTokenManager("export-secret", time.Hour)), logger))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_ExportToStdout(t *testing.T) {
	srv := newAPIServer(t)
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)

	args := []string{"-url", srv.URL, "-user", "admin", "-password", seed.DefaultPassword,
		"-category", "Revenue", "-columns", "date, amount", "-o", "-"}
	require.NoError(t, run(args, new(bytes.Buffer), stdout, stderr), stderr.String())

	want := "date,amount\n2024-09-10,650.00\n2024-05-20,800.00\n2024-01-15,1500.00\n"
	assert.Equal(t, want, stdout.String())
}

func TestRun_ExportToFileWithPrompt(t *testing.T) {
	srv := newAPIServer(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	stdin := bytes.NewBufferString(seed.DefaultPassword + "\n")

	args := []string{"-url", srv.URL, "-user", "user1", "-from", "2024-06-01", "-max", "2500", "-o", path}
	require.NoError(t, run(args, stdin, stdout, stderr), stderr.String())
	assert.Contains(t, stderr.String(), "Exported 2 transactions")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,amount,category,status,user,description", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",Software licenses"), lines[1])
}

func TestRun_Errors(t *testing.T) {
	srv := newAPIServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"без пользователя", []string{"-url", srv.URL}, "missing required flags: user"},
		{"неверный пароль", []string{"-url", srv.URL, "-user", "admin", "-password", "nope"}, "Invalid credentials"},
		{"неизвестная категория", []string{"-user", "admin", "-category", "Other"}, "category must be Revenue or Expense"},
		{"кривая дата", []string{"-user", "admin", "-from", "01/02/2024"}, "-from"},
		{"отрицательная сумма", []string{"-user", "admin", "-min", "-1"}, "-min"},
		{"неизвестная колонка", []string{"-url", srv.URL, "-user", "admin", "-password", seed.DefaultPassword, "-columns", "iban", "-o", "-"}, `unknown column "iban"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, new(bytes.Buffer), new(bytes.Buffer), new(bytes.Buffer))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
