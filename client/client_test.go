package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemopss/fin-ng/backend/api"
	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/db"
	"github.com/nemopss/fin-ng/backend/models"
	"github.com/nemopss/fin-ng/backend/seed"
)

// newTestServer поднимает настоящий API поверх in-memory SQLite с демо-данными.
func newTestServer(t *testing.T, opts ...api.Option) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage, err := db.NewSQLiteStorage(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	_, err = seed.Load(context.Background(), storage)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := api.NewHandler(storage, auth.NewTokenManager("client-secret", time.Hour), append([]api.Option{api.WithLogger(logger)}, opts...)...)
	srv := httptest.NewServer(api.NewRouter(handler, logger))
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, srv *httptest.Server, username string) *Client {
	t.Helper()
	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	_, err := c.Login(context.Background(), username, seed.DefaultPassword)
	require.NoError(t, err)
	return c
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.Me(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Access token required", apiErr.Message)

	_, err = c.Login(ctx, "admin", "wrong")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, c.Token())

	res, err := c.Login(ctx, "admin", seed.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, res.Token, c.Token())
	require.NotNil(t, c.User())
	assert.Equal(t, "admin", c.User().Username)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, me.ID)

	c.Logout()
	assert.Empty(t, c.Token())
	assert.Nil(t, c.User())
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	res, err := c.Register(context.Background(), models.RegisterRequest{Username: "carol", Password: "secret99"})
	require.NoError(t, err)
	assert.Equal(t, "carol", res.User.Username)
	assert.NotEmpty(t, c.Token())

	_, err = c.Register(context.Background(), models.RegisterRequest{Username: "x", Password: "1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Len(t, apiErr.Details, 2)
	assert.Contains(t, apiErr.Error(), "username must be at least 3 characters")
}

func TestTransactionRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	c := loggedIn(t, srv, "user3")

	amount := decimal.RequireFromString("42.10")
	created, err := c.CreateTransaction(ctx, models.CreateTransaction{
		Date:        "2024-09-01",
		Amount:      &amount,
		Category:    models.CategoryExpense,
		Status:      models.StatusPending,
		Description: "Taxi",
	})
	require.NoError(t, err)
	assert.True(t, amount.Equal(created.Amount))

	paid := models.StatusPaid
	updated, err := c.UpdateTransaction(ctx, created.ID, models.UpdateTransaction{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, updated.Status)

	got, err := c.GetTransaction(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Taxi", got.Description)

	require.NoError(t, c.DeleteTransaction(ctx, created.ID))
	_, err = c.GetTransaction(ctx, created.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestListAndFetchAll(t *testing.T) {
	srv := newTestServer(t, api.WithPerUserScope(false))
	ctx := context.Background()
	c := loggedIn(t, srv, "admin")

	items, page, err := c.ListTransactions(ctx, models.Filter{Category: models.CategoryRevenue, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3}, page)

	// 10 демо-транзакций + 95 новых дают две страницы по 100
	amount := decimal.NewFromInt(1)
	for i := range 95 {
		_, err := c.CreateTransaction(ctx, models.CreateTransaction{
			Date: "2023-01-01", Amount: &amount, Category: models.CategoryExpense,
			Status: models.StatusPaid, Description: "bulk " + strconv.Itoa(i),
		})
		require.NoError(t, err)
	}

	all, err := c.FetchAll(ctx, models.Filter{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, all, 105)
	assert.Equal(t, "Software licenses", all[0].Description)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 105, stats.TransactionCount)
	assert.Len(t, stats.MonthlyData, models.DefaultStatsWindow)
}

func TestCacheSync(t *testing.T) {
	srv := newTestServer(t, api.WithPerUserScope(false))
	c := loggedIn(t, srv, "admin")

	cache := NewCache()
	require.NoError(t, cache.Sync(context.Background(), c))
	assert.Len(t, cache.All(), 10)

	cache.SetFilter(models.Filter{Status: models.StatusPending})
	assert.Len(t, cache.Filtered(), 4)
}
