package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleTransaction() Transaction {
	return Transaction{
		ID:          "7",
		Date:        time.Date(2024, 3, 3, 18, 22, 4, 0, time.UTC),
		Amount:      decimal.RequireFromString("300.75"),
		Category:    CategoryRevenue,
		Status:      StatusPending,
		UserID:      "user-2",
		Description: "Consulting services",
	}
}

func ptr[T any](v T) *T { return &v }

func TestFilterMatch(t *testing.T) {
	tx := sampleTransaction()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"пустой фильтр", Filter{}, true},
		{"поиск по описанию без учёта регистра", Filter{Search: "CONSULT"}, true},
		{"поиск по пользователю", Filter{Search: "user-2"}, true},
		{"поиск по сумме", Filter{Search: "300.7"}, true},
		{"поиск без совпадений", Filter{Search: "equipment"}, false},
		{"категория", Filter{Category: CategoryRevenue}, true},
		{"другая категория", Filter{Category: CategoryExpense}, false},
		{"статус", Filter{Status: StatusPaid}, false},
		{"пользователь", Filter{User: "user-2"}, true},
		{"чужой пользователь", Filter{User: "user-1"}, false},
		{"dateFrom включительно", Filter{DateFrom: ptr(tx.Date)}, true},
		{"dateTo включительно", Filter{DateTo: ptr(tx.Date)}, true},
		{"dateTo раньше", Filter{DateTo: ptr(tx.Date.Add(-time.Second))}, false},
		{"amountFrom включительно", Filter{AmountFrom: ptr(decimal.RequireFromString("300.75"))}, true},
		{"amountTo меньше", Filter{AmountTo: ptr(decimal.RequireFromString("300"))}, false},
		{
			"все условия вместе",
			Filter{Search: "services", Category: CategoryRevenue, Status: StatusPending, User: "user-2"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(tx))
		})
	}
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{}.Normalize()
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)

	f = Filter{Page: 3, Limit: 1000}.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, MaxLimit, f.Limit)

	assert.Equal(t, 40, Filter{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, Filter{}.Offset())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(10, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 4, TotalPages(10, 3))
}

func TestFilterValues(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Filter{
		Search:     "fees",
		Category:   CategoryRevenue,
		DateFrom:   &from,
		AmountFrom: ptr(decimal.RequireFromString("100.5")),
		Page:       2,
	}

	v := f.Values()
	assert.Equal(t, "fees", v.Get("search"))
	assert.Equal(t, "Revenue", v.Get("category"))
	assert.Equal(t, "2024-01-01T00:00:00Z", v.Get("dateFrom"))
	assert.Equal(t, "100.5", v.Get("amountFrom"))
	assert.Equal(t, "2", v.Get("page"))
	assert.False(t, v.Has("status"))
	assert.False(t, v.Has("limit"))
}

func TestListTransactionsQueryFilter(t *testing.T) {
	q := ListTransactionsQuery{
		DateFrom:   "2024-03-01",
		DateTo:     "2024-03-03",
		AmountFrom: "100",
		Status:     "Pending",
	}
	f := q.Filter()

	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Equal(t, StatusPending, f.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *f.DateFrom)
	// голая дата в dateTo покрывает весь день
	assert.True(t, f.Match(sampleTransaction()))
	assert.True(t, decimal.NewFromInt(100).Equal(*f.AmountFrom))
}
