package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

type Storage struct {
	DB      *sql.DB
	dialect dialect
	now     func() time.Time
}

// NewStorage подключается к PostgreSQL и применяет миграции.
func NewStorage(ctx context.Context, connStr string) (*Storage, error) {
	db, err := sql.Open(postgresDialect.driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return open(ctx, db, postgresDialect)
}

// NewSQLiteStorage открывает файл SQLite (или ":memory:") и применяет миграции.
func NewSQLiteStorage(ctx context.Context, path string) (*Storage, error) {
	dsn := "file::memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = "file:" + path
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Одно соединение: in-memory база живёт ровно столько, сколько соединение,
	// и SQLite всё равно сериализует запись.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	return open(ctx, db, sqliteDialect)
}

func open(ctx context.Context, db *sql.DB, d dialect) (*Storage, error) {
	s := newStorage(db, d)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func newStorage(db *sql.DB, d dialect) *Storage {
	return &Storage{DB: db, dialect: d, now: time.Now}
}

// Migrate применяет встроенные миграции своего диалекта.
func (s *Storage) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, s.dialect.migrationsDir)
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(s.dialect.goose, s.DB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// Dialect returns "postgres" or "sqlite".
func (s *Storage) Dialect() string {
	return s.dialect.name
}

func (s *Storage) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
