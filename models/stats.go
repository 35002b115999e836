package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultStatsWindow = 12
	DefaultRecentLimit = 10
	MaxRecentLimit     = 50
	monthKeyLayout     = "2006-01"
)

type Summary struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue" swaggertype:"number" example:"4150.75"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses" swaggertype:"number" example:"9750.75"`
	NetIncome        decimal.Decimal `json:"netIncome" swaggertype:"number" example:"-5600"`
	PendingAmount    decimal.Decimal `json:"pendingAmount" swaggertype:"number" example:"3200.75"`
	PaidAmount       decimal.Decimal `json:"paidAmount" swaggertype:"number" example:"10700.75"`
	TransactionCount int64           `json:"transactionCount" example:"10"`
}

type MonthlyTotal struct {
	Month    string          `json:"month" example:"2024-01"`
	Revenue  decimal.Decimal `json:"revenue" swaggertype:"number" example:"1500"`
	Expenses decimal.Decimal `json:"expenses" swaggertype:"number" example:"0"`
}

// DashboardStats is the payload of GET /api/dashboard/stats.
type DashboardStats struct {
	Summary
	MonthlyData []MonthlyTotal `json:"monthlyData"`
}

type CategoryStat struct {
	Category Category        `json:"category" example:"Revenue"`
	Count    int64           `json:"count" example:"5"`
	Total    decimal.Decimal `json:"total" swaggertype:"number" example:"4150.75"`
	Average  decimal.Decimal `json:"average" swaggertype:"number" example:"830.15"`
}

type StatusStat struct {
	Status Status          `json:"status" example:"Paid"`
	Count  int64           `json:"count" example:"6"`
	Total  decimal.Decimal `json:"total" swaggertype:"number" example:"10700.75"`
}

// MonthWindow returns [start, end) covering window calendar months that end
// with the month containing now, in UTC.
func MonthWindow(now time.Time, window int) (start, end time.Time) {
	if window < 1 {
		window = DefaultStatsWindow
	}
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return current.AddDate(0, -(window - 1), 0), current.AddDate(0, 1, 0)
}

// DenseMonthlySeries раскладывает разреженные месячные итоги по окну:
// по одной записи на каждый месяц, по возрастанию, пустые месяцы нулевые.
// Месяцы вне окна отбрасываются.
func DenseMonthlySeries(rows []MonthlyTotal, now time.Time, window int) []MonthlyTotal {
	byMonth := make(map[string]MonthlyTotal, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	if window < 1 {
		window = DefaultStatsWindow
	}
	start, end := MonthWindow(now, window)
	series := make([]MonthlyTotal, 0, window)
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthKeyLayout)
		point, ok := byMonth[key]
		if !ok {
			point = MonthlyTotal{Month: key, Revenue: decimal.Zero, Expenses: decimal.Zero}
		}
		series = append(series, point)
	}
	return series
}

// WithNetIncome fills the derived field from revenue and expenses.
func (s Summary) WithNetIncome() Summary {
	s.NetIncome = s.TotalRevenue.Sub(s.TotalExpenses)
	return s
}
