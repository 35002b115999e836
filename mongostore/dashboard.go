package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nemopss/fin-ng/backend/models"
)

type summaryRow struct {
	Revenue  primitive.Decimal128 `bson:"revenue"`
	Expenses primitive.Decimal128 `bson:"expenses"`
	Pending  primitive.Decimal128 `bson:"pending"`
	Paid     primitive.Decimal128 `bson:"paid"`
	Count    int64                `bson:"count"`
}

type monthRow struct {
	Month    string               `bson:"_id"`
	Revenue  primitive.Decimal128 `bson:"revenue"`
	Expenses primitive.Decimal128 `bson:"expenses"`
}

type groupRow struct {
	Key     string               `bson:"_id"`
	Count   int64                `bson:"count"`
	Total   primitive.Decimal128 `bson:"total"`
	Average primitive.Decimal128 `bson:"average"`
}

type decimalTarget struct {
	src primitive.Decimal128
	dst *decimal.Decimal
}

// decimals переводит несколько Decimal128 за один проход, возвращая первую ошибку.
func decimals(dst []decimalTarget) error {
	for _, t := range dst {
		v, err := fromDecimal128(t.src)
		if err != nil {
			return err
		}
		*t.dst = v
	}
	return nil
}

func (s *Storage) Summary(ctx context.Context, owner string) (models.Summary, error) {
	cur, err := s.transactions.Aggregate(ctx, summaryPipeline(owner))
	if err != nil {
		return models.Summary{}, fmt.Errorf("summary: %w", err)
	}
	var rows []summaryRow
	if err := cur.All(ctx, &rows); err != nil {
		return models.Summary{}, fmt.Errorf("decode summary: %w", err)
	}

	sum := models.Summary{}
	if len(rows) == 0 {
		return sum.WithNetIncome(), nil
	}
	r := rows[0]
	err = decimals([]decimalTarget{
		{r.Revenue, &sum.TotalRevenue},
		{r.Expenses, &sum.TotalExpenses},
		{r.Pending, &sum.PendingAmount},
		{r.Paid, &sum.PaidAmount},
	})
	if err != nil {
		return models.Summary{}, err
	}
	sum.TransactionCount = r.Count
	return sum.WithNetIncome(), nil
}

func (s *Storage) MonthlyTotals(ctx context.Context, owner string, since, until time.Time) ([]models.MonthlyTotal, error) {
	cur, err := s.transactions.Aggregate(ctx, monthlyPipeline(owner, since, until))
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	var rows []monthRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode monthly totals: %w", err)
	}

	totals := make([]models.MonthlyTotal, 0, len(rows))
	for _, r := range rows {
		m := models.MonthlyTotal{Month: r.Month}
		if err := decimals([]decimalTarget{{r.Revenue, &m.Revenue}, {r.Expenses, &m.Expenses}}); err != nil {
			return nil, err
		}
		totals = append(totals, m)
	}
	return totals, nil
}

func (s *Storage) breakdown(ctx context.Context, owner, field string) ([]groupRow, error) {
	cur, err := s.transactions.Aggregate(ctx, breakdownPipeline(owner, field))
	if err != nil {
		return nil, fmt.Errorf("%s breakdown: %w", field, err)
	}
	var rows []groupRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s breakdown: %w", field, err)
	}
	return rows, nil
}

func (s *Storage) CategoryBreakdown(ctx context.Context, owner string) ([]models.CategoryStat, error) {
	rows, err := s.breakdown(ctx, owner, "category")
	if err != nil {
		return nil, err
	}
	stats := make([]models.CategoryStat, 0, len(rows))
	for _, r := range rows {
		c := models.CategoryStat{Category: models.Category(r.Key), Count: r.Count}
		if err := decimals([]decimalTarget{{r.Total, &c.Total}, {r.Average, &c.Average}}); err != nil {
			return nil, err
		}
		stats = append(stats, c)
	}
	return stats, nil
}

func (s *Storage) StatusBreakdown(ctx context.Context, owner string) ([]models.StatusStat, error) {
	rows, err := s.breakdown(ctx, owner, "status")
	if err != nil {
		return nil, err
	}
	stats := make([]models.StatusStat, 0, len(rows))
	for _, r := range rows {
		st := models.StatusStat{Status: models.Status(r.Key), Count: r.Count}
		if err := decimals([]decimalTarget{{r.Total, &st.Total}}); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, nil
}

func (s *Storage) RecentTransactions(ctx context.Context, owner string, limit int) ([]models.Transaction, error) {
	if limit < 1 {
		limit = models.DefaultRecentLimit
	}
	if limit > models.MaxRecentLimit {
		limit = models.MaxRecentLimit
	}
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	return s.findTransactions(ctx, conjunction(ownerConds(owner)), opts)
}
