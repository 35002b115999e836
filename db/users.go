package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nemopss/fin-ng/backend/models"
)

const userColumns = "id, username, password, email, created_at, updated_at"

// CreateUser сохраняет пользователя; пароль уже должен быть захеширован.
// Если ID пуст, генерируется UUID.
func (s *Storage) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.timestamp()
	u.CreatedAt, u.UpdatedAt = now, now

	query := s.dialect.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := s.DB.ExecContext(ctx, query,
		u.ID, u.Username, u.Password, nullString(u.Email),
		s.dialect.timeArg(now), s.dialect.timeArg(now))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, models.ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	query := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)
	return s.getUser(ctx, query, username)
}

func (s *Storage) GetUserByID(ctx context.Context, id string) (models.User, error) {
	query := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.getUser(ctx, query, id)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (models.User, error) {
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateUser меняет только переданные поля и всегда обновляет updated_at.
func (s *Storage) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error) {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, nullString(*upd.Email))
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.dialect.timeArg(s.timestamp()), id)

	query := s.dialect.rebind(`UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? RETURNING ` + userColumns)
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.User{}, models.ErrNotFound
	case isUniqueViolation(err):
		return models.User{}, models.ErrConflict
	case err != nil:
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Storage) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u     models.User
		email sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Password, &email,
		timeValue{&u.CreatedAt}, timeValue{&u.UpdatedAt})
	u.Email = email.String
	return u, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
