package db

import (
	"context"
	"fmt"
	"time"

	"github.com/nemopss/fin-ng/backend/models"
)

func (s *Storage) Summary(ctx context.Context, owner string) (models.Summary, error) {
	d := s.dialect
	where := ownerClause(owner)
	query := d.rebind(`SELECT
		COALESCE(` + d.sum("CASE WHEN category = 'Revenue' THEN amount END") + `, 0),
		COALESCE(` + d.sum("CASE WHEN category = 'Expense' THEN amount END") + `, 0),
		COALESCE(` + d.sum("CASE WHEN status = 'Pending' THEN amount END") + `, 0),
		COALESCE(` + d.sum("CASE WHEN status = 'Paid' THEN amount END") + `, 0),
		COUNT(*)
		FROM transactions` + where.String())

	var sum models.Summary
	err := s.DB.QueryRowContext(ctx, query, where.args...).Scan(
		&sum.TotalRevenue, &sum.TotalExpenses, &sum.PendingAmount, &sum.PaidAmount, &sum.TransactionCount)
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return sum.WithNetIncome(), nil
}

// MonthlyTotals возвращает разреженные итоги по месяцам UTC в диапазоне [since, until).
func (s *Storage) MonthlyTotals(ctx context.Context, owner string, since, until time.Time) ([]models.MonthlyTotal, error) {
	d := s.dialect
	where := ownerClause(owner)
	where.add("date >= ?", d.timeArg(since))
	where.add("date < ?", d.timeArg(until))

	query := d.rebind(`SELECT ` + d.month + ` AS month,
		COALESCE(` + d.sum("CASE WHEN category = 'Revenue' THEN amount END") + `, 0),
		COALESCE(` + d.sum("CASE WHEN category = 'Expense' THEN amount END") + `, 0)
		FROM transactions` + where.String() + `
		GROUP BY month ORDER BY month`)

	rows, err := s.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	defer rows.Close()

	totals := []models.MonthlyTotal{}
	for rows.Next() {
		var m models.MonthlyTotal
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Expenses); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		totals = append(totals, m)
	}
	return totals, rows.Err()
}

func (s *Storage) CategoryBreakdown(ctx context.Context, owner string) ([]models.CategoryStat, error) {
	where := ownerClause(owner)
	query := s.dialect.rebind(`SELECT category, COUNT(*),
		COALESCE(` + s.dialect.sum("amount") + `, 0),
		COALESCE(ROUND(AVG(amount), 2), 0)
		FROM transactions` + where.String() + `
		GROUP BY category ORDER BY category`)

	rows, err := s.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	stats := []models.CategoryStat{}
	for rows.Next() {
		var c models.CategoryStat
		if err := rows.Scan(&c.Category, &c.Count, &c.Total, &c.Average); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		stats = append(stats, c)
	}
	return stats, rows.Err()
}

func (s *Storage) StatusBreakdown(ctx context.Context, owner string) ([]models.StatusStat, error) {
	where := ownerClause(owner)
	query := s.dialect.rebind(`SELECT status, COUNT(*),
		COALESCE(` + s.dialect.sum("amount") + `, 0)
		FROM transactions` + where.String() + `
		GROUP BY status ORDER BY status`)

	rows, err := s.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("status breakdown: %w", err)
	}
	defer rows.Close()

	stats := []models.StatusStat{}
	for rows.Next() {
		var st models.StatusStat
		if err := rows.Scan(&st.Status, &st.Count, &st.Total); err != nil {
			return nil, fmt.Errorf("scan status stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *Storage) RecentTransactions(ctx context.Context, owner string, limit int) ([]models.Transaction, error) {
	if limit < 1 {
		limit = models.DefaultRecentLimit
	}
	if limit > models.MaxRecentLimit {
		limit = models.MaxRecentLimit
	}
	where := ownerClause(owner)
	query := s.dialect.rebind(`SELECT ` + transactionColumns + ` FROM transactions` + where.String() +
		` ORDER BY date DESC, id DESC LIMIT ?`)
	return s.queryTransactions(ctx, query, append(where.args, limit)...)
}
