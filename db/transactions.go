package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nemopss/fin-ng/backend/models"
)

const transactionColumns = "id, date, amount, category, status, user_id, user_profile, description, created_at, updated_at"

// ListTransactions возвращает страницу транзакций и общее число совпадений.
// Сортировка: date DESC, затем id DESC.
func (s *Storage) ListTransactions(ctx context.Context, f models.Filter, owner string) ([]models.Transaction, int64, error) {
	f = f.Normalize()
	where := s.transactionFilter(f, owner)

	var total int64
	countQuery := s.dialect.rebind(`SELECT COUNT(*) FROM transactions` + where.String())
	if err := s.DB.QueryRowContext(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := s.dialect.rebind(`SELECT ` + transactionColumns + ` FROM transactions` + where.String() +
		` ORDER BY date DESC, id DESC LIMIT ? OFFSET ?`)
	args := append(where.args, f.Limit, f.Offset())

	items, err := s.queryTransactions(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Storage) GetTransaction(ctx context.Context, id, owner string) (models.Transaction, error) {
	txID, ok := parseID(id)
	if !ok {
		return models.Transaction{}, models.ErrNotFound
	}

	where := ownerClause(owner)
	where.add("id = ?", txID)
	query := s.dialect.rebind(`SELECT ` + transactionColumns + ` FROM transactions` + where.String())

	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query, where.args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, models.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// CreateTransaction присваивает ID и метки времени; пустой профиль заменяется
// на models.DefaultUserProfile.
func (s *Storage) CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	if t.UserProfile == "" {
		t.UserProfile = models.DefaultUserProfile
	}
	now := s.timestamp()
	t.Date = t.Date.UTC().Truncate(time.Microsecond)
	t.CreatedAt, t.UpdatedAt = now, now

	query := s.dialect.rebind(`INSERT INTO transactions
		(date, amount, category, status, user_id, user_profile, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := s.DB.QueryRowContext(ctx, query,
		s.dialect.timeArg(t.Date), s.dialect.amountArg(t.Amount), string(t.Category), string(t.Status),
		t.UserID, t.UserProfile, t.Description,
		s.dialect.timeArg(now), s.dialect.timeArg(now),
	).Scan(&id)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)
	return t, nil
}

// UpdateTransaction меняет только переданные поля; updated_at обновляется всегда.
func (s *Storage) UpdateTransaction(ctx context.Context, id string, upd models.TransactionUpdate, owner string) (models.Transaction, error) {
	txID, ok := parseID(id)
	if !ok {
		return models.Transaction{}, models.ErrNotFound
	}

	d := s.dialect
	sets := make([]string, 0, 6)
	args := make([]any, 0, 8)
	if upd.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, d.timeArg(*upd.Date))
	}
	if upd.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, d.amountArg(*upd.Amount))
	}
	if upd.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, string(*upd.Category))
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, d.timeArg(s.timestamp()))

	where := ownerClause(owner)
	where.add("id = ?", txID)
	args = append(args, where.args...)

	query := d.rebind(`UPDATE transactions SET ` + strings.Join(sets, ", ") + where.String() +
		` RETURNING ` + transactionColumns)
	t, err := scanTransaction(s.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Transaction{}, models.ErrNotFound
	}
	if err != nil {
		return models.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	return t, nil
}

func (s *Storage) DeleteTransaction(ctx context.Context, id, owner string) error {
	txID, ok := parseID(id)
	if !ok {
		return models.ErrNotFound
	}

	where := ownerClause(owner)
	where.add("id = ?", txID)
	res, err := s.DB.ExecContext(ctx, s.dialect.rebind(`DELETE FROM transactions`+where.String()), where.args...)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Storage) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	items := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return items, nil
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var (
		t  models.Transaction
		id int64
	)
	err := row.Scan(&id, timeValue{&t.Date}, &t.Amount, &t.Category, &t.Status,
		&t.UserID, &t.UserProfile, &t.Description,
		timeValue{&t.CreatedAt}, timeValue{&t.UpdatedAt})
	t.ID = strconv.FormatInt(id, 10)
	return t, err
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil && n > 0
}
