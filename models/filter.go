package models

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filter holds the criteria for listing transactions. All criteria are
// combined with AND; zero values mean "not set".
type Filter struct {
	Search     string
	Category   Category
	Status     Status
	User       string
	DateFrom   *time.Time
	DateTo     *time.Time
	AmountFrom *decimal.Decimal
	AmountTo   *decimal.Decimal
	Page       int
	Limit      int
}

// Normalize подставляет значения по умолчанию и ограничивает limit.
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = DefaultPage
	}
	if f.Limit < 1 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	return f
}

func (f Filter) Offset() int {
	f = f.Normalize()
	return (f.Page - 1) * f.Limit
}

// Match reports whether t satisfies every criterion of f. Paging is ignored.
func (f Filter) Match(t Transaction) bool {
	if f.Search != "" && !matchSearch(t, f.Search) {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.User != "" && t.UserID != f.User {
		return false
	}
	if f.DateFrom != nil && t.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.Date.After(*f.DateTo) {
		return false
	}
	if f.AmountFrom != nil && t.Amount.LessThan(*f.AmountFrom) {
		return false
	}
	if f.AmountTo != nil && t.Amount.GreaterThan(*f.AmountTo) {
		return false
	}
	return true
}

func matchSearch(t Transaction, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.UserID), needle) ||
		strings.Contains(t.Amount.String(), needle)
}

// Values encodes f as query parameters understood by GET /api/transactions.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Category != "" {
		v.Set("category", string(f.Category))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.User != "" {
		v.Set("user", f.User)
	}
	if f.DateFrom != nil {
		v.Set("dateFrom", f.DateFrom.UTC().Format(time.RFC3339Nano))
	}
	if f.DateTo != nil {
		v.Set("dateTo", f.DateTo.UTC().Format(time.RFC3339Nano))
	}
	if f.AmountFrom != nil {
		v.Set("amountFrom", f.AmountFrom.String())
	}
	if f.AmountTo != nil {
		v.Set("amountTo", f.AmountTo.String())
	}
	return v
}

// TotalPages возвращает ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
