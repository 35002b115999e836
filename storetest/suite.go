// Package storetest содержит общий набор тестов для реализаций api.Storage.
// Каждая реализация запускает его со своей фабрикой пустого хранилища.
package storetest

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/nemopss/fin-ng/backend/api"
	"github.com/nemopss/fin-ng/backend/models"
	"github.com/nemopss/fin-ng/backend/seed"
)

type StorageSuite struct {
	suite.Suite

	// NewStorage must return an empty, migrated store.
	NewStorage func(t *testing.T) api.Storage

	ctx   context.Context
	store api.Storage
}

func Run(t *testing.T, newStorage func(t *testing.T) api.Storage) {
	suite.Run(t, &StorageSuite{NewStorage: newStorage})
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStorage(s.T())
}

func (s *StorageSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *StorageSuite) loadSeed() seed.Result {
	res, err := seed.Load(s.ctx, s.store)
	s.Require().NoError(err)
	s.Require().Len(res.Users, 4)
	s.Require().Len(res.Transactions, 10)
	return res
}

func (s *StorageSuite) equalDecimal(want string, got decimal.Decimal, msgAndArgs ...any) {
	s.True(decimal.RequireFromString(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func (s *StorageSuite) newUser(name string) models.User {
	u, err := s.store.CreateUser(s.ctx, models.User{Username: name, Password: "hash", Email: name + "@example.com"})
	s.Require().NoError(err)
	return u
}

func (s *StorageSuite) TestUsers() {
	u := s.newUser("alice")
	s.NotEmpty(u.ID)
	s.False(u.CreatedAt.IsZero())

	got, err := s.store.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
	s.Equal("hash", got.Password)
	s.Equal("alice@example.com", got.Email)

	byID, err := s.store.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	_, err = s.store.GetUserByUsername(s.ctx, "nobody")
	s.ErrorIs(err, models.ErrNotFound)

	_, err = s.store.CreateUser(s.ctx, models.User{Username: "alice", Password: "x"})
	s.ErrorIs(err, models.ErrConflict, "повторное имя")

	_, err = s.store.CreateUser(s.ctx, models.User{Username: "alice2", Password: "x", Email: "alice@example.com"})
	s.ErrorIs(err, models.ErrConflict, "повторный email")

	// пустой email не участвует в уникальности
	_, err = s.store.CreateUser(s.ctx, models.User{Username: "noemail1", Password: "x"})
	s.Require().NoError(err)
	_, err = s.store.CreateUser(s.ctx, models.User{Username: "noemail2", Password: "x"})
	s.Require().NoError(err)

	n, err := s.store.CountUsers(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(3, n)

	users, err := s.store.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 3)
}

func (s *StorageSuite) TestUpdateUser() {
	u := s.newUser("bob")
	s.newUser("carol")

	name := "bobby"
	updated, err := s.store.UpdateUser(s.ctx, u.ID, models.UserUpdate{Username: &name})
	s.Require().NoError(err)
	s.Equal("bobby", updated.Username)
	s.Equal("bob@example.com", updated.Email)
	s.False(updated.UpdatedAt.Before(u.UpdatedAt))

	taken := "carol"
	_, err = s.store.UpdateUser(s.ctx, u.ID, models.UserUpdate{Username: &taken})
	s.ErrorIs(err, models.ErrConflict)

	takenEmail := "carol@example.com"
	_, err = s.store.UpdateUser(s.ctx, u.ID, models.UserUpdate{Email: &takenEmail})
	s.ErrorIs(err, models.ErrConflict)

	_, err = s.store.UpdateUser(s.ctx, missingID, models.UserUpdate{Username: &name})
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *StorageSuite) TestTransactionCRUD() {
	owner := s.newUser("owner")
	other := s.newUser("other")

	in := models.Transaction{
		Date:        time.Date(2024, 2, 21, 11, 14, 38, 0, time.UTC),
		Amount:      decimal.RequireFromString("1200.50"),
		Category:    models.CategoryExpense,
		Status:      models.StatusPaid,
		UserID:      owner.ID,
		Description: "Office supplies purchase",
	}
	created, err := s.store.CreateTransaction(s.ctx, in)
	s.Require().NoError(err)
	s.NotEmpty(created.ID)
	s.Equal(models.DefaultUserProfile, created.UserProfile)

	got, err := s.store.GetTransaction(s.ctx, created.ID, "")
	s.Require().NoError(err)
	s.Equal(created.ID, got.ID)
	s.True(in.Date.Equal(got.Date))
	s.equalDecimal("1200.5", got.Amount)
	s.Equal(models.CategoryExpense, got.Category)
	s.Equal(models.StatusPaid, got.Status)
	s.Equal(owner.ID, got.UserID)
	s.Equal(in.Description, got.Description)
	s.Equal(models.DefaultUserProfile, got.UserProfile)

	_, err = s.store.GetTransaction(s.ctx, created.ID, other.ID)
	s.ErrorIs(err, models.ErrNotFound, "чужой владелец")

	desc := "Office chairs"
	updated, err := s.store.UpdateTransaction(s.ctx, created.ID, models.TransactionUpdate{Description: &desc}, owner.ID)
	s.Require().NoError(err)
	s.Equal("Office chairs", updated.Description)
	s.equalDecimal("1200.5", updated.Amount)
	s.Equal(models.StatusPaid, updated.Status)
	s.True(in.Date.Equal(updated.Date))
	s.False(updated.UpdatedAt.Before(created.UpdatedAt))

	status := models.StatusPending
	amount := decimal.RequireFromString("99.99")
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	updated, err = s.store.UpdateTransaction(s.ctx, created.ID,
		models.TransactionUpdate{Status: &status, Amount: &amount, Date: &date}, "")
	s.Require().NoError(err)
	s.Equal(models.StatusPending, updated.Status)
	s.equalDecimal("99.99", updated.Amount)
	s.True(date.Equal(updated.Date))
	s.Equal("Office chairs", updated.Description)

	_, err = s.store.UpdateTransaction(s.ctx, created.ID, models.TransactionUpdate{Description: &desc}, other.ID)
	s.ErrorIs(err, models.ErrNotFound)

	s.ErrorIs(s.store.DeleteTransaction(s.ctx, created.ID, other.ID), models.ErrNotFound)
	s.Require().NoError(s.store.DeleteTransaction(s.ctx, created.ID, owner.ID))
	s.ErrorIs(s.store.DeleteTransaction(s.ctx, created.ID, owner.ID), models.ErrNotFound)

	_, err = s.store.GetTransaction(s.ctx, created.ID, "")
	s.ErrorIs(err, models.ErrNotFound)

	kept, err := s.store.CreateTransaction(s.ctx, in)
	s.Require().NoError(err)
	_, before, err := s.store.ListTransactions(s.ctx, models.Filter{}, "")
	s.Require().NoError(err)
	s.Equal(int64(1), before)

	for _, bogus := range []string{"", "abc", "-1", missingID} {
		_, err = s.store.GetTransaction(s.ctx, bogus, "")
		s.ErrorIs(err, models.ErrNotFound, bogus)
		_, err = s.store.UpdateTransaction(s.ctx, bogus, models.TransactionUpdate{Description: &desc}, "")
		s.ErrorIs(err, models.ErrNotFound, bogus)
		s.ErrorIs(s.store.DeleteTransaction(s.ctx, bogus, ""), models.ErrNotFound, bogus)
	}

	// несуществующие id не должны задевать чужие записи
	_, after, err := s.store.ListTransactions(s.ctx, models.Filter{}, "")
	s.Require().NoError(err)
	s.Equal(before, after)
	got, err = s.store.GetTransaction(s.ctx, kept.ID, "")
	s.Require().NoError(err)
	s.Equal(in.Description, got.Description)
}

func (s *StorageSuite) TestEmptyUpdateRefreshesTimestamp() {
	owner := s.newUser("owner")
	created, err := s.store.CreateTransaction(s.ctx, models.Transaction{
		Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(1),
		Category: models.CategoryRevenue, Status: models.StatusPaid, UserID: owner.ID, Description: "x",
	})
	s.Require().NoError(err)

	time.Sleep(5 * time.Millisecond)
	updated, err := s.store.UpdateTransaction(s.ctx, created.ID, models.TransactionUpdate{}, "")
	s.Require().NoError(err)
	s.True(updated.UpdatedAt.After(created.UpdatedAt))
	s.Equal("x", updated.Description)
}

func (s *StorageSuite) TestListMatchesFilterPredicate() {
	res := s.loadSeed()
	admin := res.Users[0].ID

	rent, err := s.store.CreateTransaction(s.ctx, models.Transaction{
		Date: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), Amount: decimal.RequireFromString("12.34"),
		Category: models.CategoryExpense, Status: models.StatusPaid, UserID: res.Users[1].ID,
		Description: "Оплата аренды",
	})
	s.Require().NoError(err)
	all := append(res.Transactions, rent)

	dec := func(v string) *decimal.Decimal { d := decimal.RequireFromString(v); return &d }
	at := func(v string) *time.Time {
		t, err := time.Parse(time.RFC3339Nano, v)
		s.Require().NoError(err)
		return &t
	}

	tests := []struct {
		name   string
		filter models.Filter
		want   int
	}{
		{"без фильтра", models.Filter{}, 11},
		{"категория", models.Filter{Category: models.CategoryRevenue}, 5},
		{"статус", models.Filter{Status: models.StatusPending}, 4},
		{"поиск по описанию", models.Filter{Search: "fees"}, 2},
		{"поиск без учёта регистра", models.Filter{Search: "LICENSE"}, 2},
		{"поиск по сумме", models.Filter{Search: "300.75"}, 1},
		{"поиск по кириллице", models.Filter{Search: "оплата"}, 1},
		{"кириллица в другом регистре", models.Filter{Search: "АРЕНДЫ"}, 1},
		{"поиск с символами LIKE", models.Filter{Search: "%"}, 0},
		{"поиск с подчёркиванием", models.Filter{Search: "_"}, 0},
		{"диапазон дат", models.Filter{DateFrom: at("2024-06-01T00:00:00Z"), DateTo: at("2024-08-31T23:59:59.999Z")}, 3},
		{"диапазон сумм включительно", models.Filter{AmountFrom: dec("800"), AmountTo: dec("1500")}, 5},
		{"пользователь", models.Filter{User: admin}, 3},
		{"несколько условий", models.Filter{Category: models.CategoryRevenue, Status: models.StatusPaid}, 2},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			items, total, err := s.store.ListTransactions(s.ctx, tt.filter, "")
			s.Require().NoError(err)
			s.EqualValues(tt.want, total)
			s.Len(items, tt.want)

			var want []string
			for _, t := range all {
				if tt.filter.Match(t) {
					want = append(want, t.ID)
				}
			}
			s.ElementsMatch(want, ids(items))
		})
	}
}

func (s *StorageSuite) TestListOrderingAndPaging() {
	res := s.loadSeed()

	items, total, err := s.store.ListTransactions(s.ctx, models.Filter{}, "")
	s.Require().NoError(err)
	s.EqualValues(10, total)
	s.Equal("Software licenses", items[0].Description)
	s.Equal("Product sales revenue", items[9].Description)
	s.True(sort.SliceIsSorted(items, func(i, j int) bool { return items[i].Date.After(items[j].Date) }))

	page, total, err := s.store.ListTransactions(s.ctx, models.Filter{Page: 2, Limit: 3}, "")
	s.Require().NoError(err)
	s.EqualValues(10, total)
	s.Equal([]string{"License fees", "Marketing campaign", "Service fees"}, descriptions(page))

	last, total, err := s.store.ListTransactions(s.ctx, models.Filter{Page: 4, Limit: 3}, "")
	s.Require().NoError(err)
	s.EqualValues(10, total)
	s.Len(last, 1)

	beyond, total, err := s.store.ListTransactions(s.ctx, models.Filter{Page: 9, Limit: 3}, "")
	s.Require().NoError(err)
	s.EqualValues(10, total)
	s.Empty(beyond)

	mine, total, err := s.store.ListTransactions(s.ctx, models.Filter{}, res.Users[0].ID)
	s.Require().NoError(err)
	s.EqualValues(3, total)
	for _, t := range mine {
		s.Equal(res.Users[0].ID, t.UserID)
	}
}

func (s *StorageSuite) TestSummary() {
	empty, err := s.store.Summary(s.ctx, "")
	s.Require().NoError(err)
	s.True(empty.TotalRevenue.IsZero())
	s.True(empty.NetIncome.IsZero())
	s.Zero(empty.TransactionCount)

	res := s.loadSeed()

	sum, err := s.store.Summary(s.ctx, "")
	s.Require().NoError(err)
	s.equalDecimal("4150.75", sum.TotalRevenue)
	s.equalDecimal("9750.75", sum.TotalExpenses)
	s.equalDecimal("-5600", sum.NetIncome)
	s.equalDecimal("3200.75", sum.PendingAmount)
	s.equalDecimal("10700.75", sum.PaidAmount)
	s.EqualValues(10, sum.TransactionCount)

	mine, err := s.store.Summary(s.ctx, res.Users[0].ID)
	s.Require().NoError(err)
	s.equalDecimal("2950", mine.TotalRevenue)
	s.equalDecimal("0", mine.TotalExpenses)
	s.equalDecimal("2950", mine.NetIncome)
	s.EqualValues(3, mine.TransactionCount)
}

func (s *StorageSuite) TestMonthlyTotals() {
	s.loadSeed()

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.store.MonthlyTotals(s.ctx, "", since, until)
	s.Require().NoError(err)
	s.Require().Len(rows, 10)
	s.Equal("2024-01", rows[0].Month)
	s.equalDecimal("1500", rows[0].Revenue)
	s.equalDecimal("0", rows[0].Expenses)
	s.Equal("2024-02", rows[1].Month)
	s.equalDecimal("1200.5", rows[1].Expenses)
	s.Equal("2024-10", rows[9].Month)

	narrow, err := s.store.MonthlyTotals(s.ctx, "",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Require().Len(narrow, 2)
	s.Equal("2024-03", narrow[0].Month)
	s.Equal("2024-04", narrow[1].Month)
	s.equalDecimal("5000", narrow[1].Expenses)
}

func (s *StorageSuite) TestBreakdowns() {
	s.loadSeed()

	cats, err := s.store.CategoryBreakdown(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(cats, 2)
	s.Equal(models.CategoryExpense, cats[0].Category)
	s.EqualValues(5, cats[0].Count)
	s.equalDecimal("9750.75", cats[0].Total)
	s.equalDecimal("1950.15", cats[0].Average)
	s.Equal(models.CategoryRevenue, cats[1].Category)
	s.equalDecimal("4150.75", cats[1].Total)
	s.equalDecimal("830.15", cats[1].Average)

	statuses, err := s.store.StatusBreakdown(s.ctx, "")
	s.Require().NoError(err)
	s.Require().Len(statuses, 2)
	s.Equal(models.StatusPaid, statuses[0].Status)
	s.EqualValues(6, statuses[0].Count)
	s.equalDecimal("10700.75", statuses[0].Total)
	s.Equal(models.StatusPending, statuses[1].Status)
	s.EqualValues(4, statuses[1].Count)
	s.equalDecimal("3200.75", statuses[1].Total)
}

func (s *StorageSuite) TestRecentTransactions() {
	s.loadSeed()

	recent, err := s.store.RecentTransactions(s.ctx, "", 3)
	s.Require().NoError(err)
	s.Equal([]string{"Software licenses", "Subscription revenue", "Utility bills"}, descriptions(recent))

	all, err := s.store.RecentTransactions(s.ctx, "", 0)
	s.Require().NoError(err)
	s.Len(all, models.DefaultRecentLimit)
}

func ids(items []models.Transaction) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func descriptions(items []models.Transaction) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.Description)
	}
	return out
}

// missingID не существует ни в одном хранилище: для SQL это свободный
// числовой ключ, для MongoDB некорректный ObjectID.
const missingID = "999999"
