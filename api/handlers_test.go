package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/db"
	"github.com/nemopss/fin-ng/backend/events"
	"github.com/nemopss/fin-ng/backend/models"
	"github.com/nemopss/fin-ng/backend/seed"
)

const testSecret = "test-secret"

// testNow лежит в октябре 2024, чтобы все демо-транзакции попадали в окно статистики.
var testNow = time.Date(2024, 10, 31, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	router    *gin.Engine
	storage   Storage
	seed      seed.Result
	publisher *recordingPublisher
}

type recordingPublisher struct {
	mu    sync.Mutex
	kinds []events.Kind
}

func (p *recordingPublisher) Publish(_ context.Context, e events.TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kinds = append(p.kinds, e.Kind)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

// setupTestHandler поднимает роутер поверх чистой in-memory SQLite с демо-данными.
func setupTestHandler(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage, err := db.NewSQLiteStorage(context.Background(), ":memory:")
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { storage.Close() })

	res, err := seed.Load(context.Background(), storage)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithPublisher(pub), WithLogger(logger), WithClock(func() time.Time { return testNow })}, opts...)
	handler := NewHandler(storage, auth.NewTokenManager(testSecret, time.Hour), opts...)

	return &testEnv{router: NewRouter(handler, logger), storage: storage, seed: res, publisher: pub}
}

type envelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Error      string              `json:"error"`
	Message    string              `json:"message"`
	Details    []models.FieldError `json:"details"`
	Pagination *models.Pagination  `json:"pagination"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func getToken(t *testing.T, e *testEnv, username, password string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func fieldsOf(details []models.FieldError) []string {
	out := make([]string, 0, len(details))
	for _, d := range details {
		out = append(out, d.Field)
	}
	return out
}

func TestRegister(t *testing.T) {
	e := setupTestHandler(t)

	// Тест успешной регистрации
	w, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "newuser", "email": "new@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.NotContains(t, w.Body.String(), "secret1")
	assert.NotContains(t, w.Body.String(), `"password"`)

	data := decodeData[models.AuthResponse](t, env)
	assert.Equal(t, "newuser", data.User.Username)
	assert.NotEmpty(t, data.User.ID)

	// токен из регистрации сразу годится для защищённых маршрутов
	w, env = e.do(t, http.MethodGet, "/api/auth/me", data.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "newuser", decodeData[models.User](t, env).Username)

	// Тест повторной регистрации
	w, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "newuser", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", env.Error)

	w, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "another", "email": "new@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists", env.Error)

	// Тест невалидных данных
	w, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "ab", "email": "nope", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Error)
	assert.ElementsMatch(t, []string{"username", "email", "password"}, fieldsOf(env.Details))

	w, env = e.do(t, http.MethodPost, "/api/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Error)

	// Имя с пробелами по краям отклоняется, а не обрезается молча
	for _, name := range []string{"   ", " ab ", "newbie "} {
		w, env = e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": name, "password": "secret1"})
		assert.Equal(t, http.StatusBadRequest, w.Code, "%q", name)
		assert.Equal(t, []string{"username"}, fieldsOf(env.Details), "%q", name)
	}
	for _, name := range []string{"", "ab", "newbie"} {
		_, err := e.storage.GetUserByUsername(context.Background(), name)
		assert.ErrorIs(t, err, models.ErrNotFound, "%q", name)
	}
}

func TestLogin(t *testing.T) {
	e := setupTestHandler(t)

	token := getToken(t, e, "admin", seed.DefaultPassword)
	claims, err := auth.NewTokenManager(testSecret, time.Hour).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, e.seed.Users[0].ID, claims.UserID)
	assert.Equal(t, "admin", claims.Username)

	// Неверный пароль и несуществующий пользователь неразличимы
	w1, env1 := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "wrong"})
	w2, env2 := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w1.Code)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)
	assert.Equal(t, "Invalid credentials", env1.Error)
	assert.Equal(t, env1, env2)

	w, env := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"password"}, fieldsOf(env.Details))
}

func TestAuthMiddleware(t *testing.T) {
	e := setupTestHandler(t)

	w, env := e.do(t, http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", env.Error)

	w, env = e.do(t, http.MethodGet, "/api/transactions", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", env.Error)

	old := auth.NewTokenManager(testSecret, time.Hour).WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, _, err := old.Issue(e.seed.Users[0].ID, "admin")
	require.NoError(t, err)
	w, env = e.do(t, http.MethodGet, "/api/transactions", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", env.Error)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	req.Header.Set("Authorization", "Basic YWRtaW46cGFzcw==")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	e := setupTestHandler(t)
	token := getToken(t, e, "user1", seed.DefaultPassword)

	w, env := e.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"date":        "2024-10-01",
		"amount":      99.5,
		"category":    "Expense",
		"status":      "Pending",
		"description": "  Team lunch  ",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[models.Transaction](t, env)
	assert.Equal(t, e.seed.Users[1].ID, created.UserID)
	assert.Equal(t, "Team lunch", created.Description)
	assert.Equal(t, models.DefaultUserProfile, created.UserProfile)
	assert.Equal(t, "99.5", created.Amount.String())
	assert.True(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC).Equal(created.Date))

	w, env = e.do(t, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeData[models.Transaction](t, env).ID)

	// Частичное обновление меняет только переданные поля
	w, env = e.do(t, http.MethodPut, "/api/transactions/"+created.ID, token, map[string]any{"status": "Paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[models.Transaction](t, env)
	assert.Equal(t, models.StatusPaid, updated.Status)
	assert.Equal(t, "Team lunch", updated.Description)
	assert.Equal(t, "99.5", updated.Amount.String())

	w, env = e.do(t, http.MethodPut, "/api/transactions/"+created.ID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields to update", env.Error)

	w, env = e.do(t, http.MethodPut, "/api/transactions/"+created.ID, token, map[string]any{"amount": -1, "description": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"amount", "description"}, fieldsOf(env.Details))

	w, env = e.do(t, http.MethodDelete, "/api/transactions/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Transaction deleted successfully", env.Message)

	w, env = e.do(t, http.MethodGet, "/api/transactions/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Transaction not found", env.Error)

	w, _ = e.do(t, http.MethodDelete, "/api/transactions/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, http.MethodPut, "/api/transactions/not-an-id", token, map[string]any{"status": "Paid"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, []events.Kind{events.TransactionCreated, events.TransactionUpdated, events.TransactionDeleted}, e.publisher.kinds)
}

func TestCreateTransactionValidation(t *testing.T) {
	e := setupTestHandler(t)
	token := getToken(t, e, "admin", seed.DefaultPassword)

	valid := func() map[string]any {
		return map[string]any{
			"date": "2024-01-15T08:34:12Z", "amount": 10, "category": "Revenue", "status": "Paid", "description": "ok",
		}
	}

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"без даты", func(b map[string]any) { delete(b, "date") }, "date"},
		{"кривая дата", func(b map[string]any) { b["date"] = "15.01.2024" }, "date"},
		{"без суммы", func(b map[string]any) { delete(b, "amount") }, "amount"},
		{"отрицательная сумма", func(b map[string]any) { b["amount"] = -0.01 }, "amount"},
		{"чужая категория", func(b map[string]any) { b["category"] = "Refund" }, "category"},
		{"чужой статус", func(b map[string]any) { b["status"] = "Cancelled" }, "status"},
		{"пустое описание", func(b map[string]any) { b["description"] = "  " }, "description"},
		{"длинное описание", func(b map[string]any) { b["description"] = strings.Repeat("x", 501) }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(body)
			w, env := e.do(t, http.MethodPost, "/api/transactions", token, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "Validation failed", env.Error)
			assert.Contains(t, fieldsOf(env.Details), tt.field)
		})
	}

	// нулевая сумма и описание ровно из 500 символов допустимы
	body := valid()
	body["amount"] = 0
	body["description"] = strings.Repeat("x", 500)
	w, _ := e.do(t, http.MethodPost, "/api/transactions", token, body)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, e.publisher.kinds, 1)
}

func TestGetTransactionsWithFilters(t *testing.T) {
	e := setupTestHandler(t, WithPerUserScope(false))
	token := getToken(t, e, "admin", seed.DefaultPassword)

	tests := []struct {
		name  string
		query url.Values
		want  int64
	}{
		{"без фильтров", url.Values{}, 10},
		{"категория", url.Values{"category": {"Expense"}}, 5},
		{"статус", url.Values{"status": {"Paid"}}, 6},
		{"поиск", url.Values{"search": {"revenue"}}, 2},
		{"пользователь", url.Values{"user": {e.seed.Users[3].ID}}, 2},
		{"даты", url.Values{"dateFrom": {"2024-03-03"}, "dateTo": {"2024-05-20"}}, 3},
		{"суммы", url.Values{"amountFrom": {"150"}, "amountTo": {"300.75"}}, 2},
		{"всё вместе", url.Values{"category": {"Revenue"}, "status": {"Pending"}, "amountFrom": {"850"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := e.do(t, http.MethodGet, "/api/transactions?"+tt.query.Encode(), token, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			require.NotNil(t, env.Pagination)
			assert.Equal(t, tt.want, env.Pagination.Total)
			assert.Len(t, decodeData[[]models.Transaction](t, env), int(tt.want))
		})
	}

	w, env := e.do(t, http.MethodGet, "/api/transactions?page=2&limit=4", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 4, Total: 10, TotalPages: 3}, *env.Pagination)
	page := decodeData[[]models.Transaction](t, env)
	require.Len(t, page, 4)
	assert.Equal(t, "Marketing campaign", page[0].Description)

	// нулевые page и limit означают значения по умолчанию
	w, env = e.do(t, http.MethodGet, "/api/transactions?page=0&limit=0", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 20, Total: 10, TotalPages: 1}, *env.Pagination)
}

func TestGetTransactionsInvalidParams(t *testing.T) {
	e := setupTestHandler(t)
	token := getToken(t, e, "admin", seed.DefaultPassword)

	for _, q := range []string{
		"category=Other",
		"status=paid",
		"limit=1000",
		"page=abc",
		"dateFrom=yesterday",
		"amountFrom=-5",
		"amountTo=lots",
	} {
		t.Run(q, func(t *testing.T) {
			w, env := e.do(t, http.MethodGet, "/api/transactions?"+q, token, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "Validation failed", env.Error)
			assert.NotEmpty(t, env.Details)
		})
	}
}

func TestPerUserScope(t *testing.T) {
	e := setupTestHandler(t)
	admin := getToken(t, e, "admin", seed.DefaultPassword)
	user1 := getToken(t, e, "user1", seed.DefaultPassword)

	w, env := e.do(t, http.MethodGet, "/api/transactions", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, env.Pagination.Total)
	for _, tx := range decodeData[[]models.Transaction](t, env) {
		assert.Equal(t, e.seed.Users[0].ID, tx.UserID)
	}

	adminTx := e.seed.Transactions[0].ID
	w, _ = e.do(t, http.MethodGet, "/api/transactions/"+adminTx, user1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = e.do(t, http.MethodPut, "/api/transactions/"+adminTx, user1, map[string]any{"status": "Pending"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = e.do(t, http.MethodDelete, "/api/transactions/"+adminTx, user1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = e.do(t, http.MethodGet, "/api/transactions/"+adminTx, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfile(t *testing.T) {
	e := setupTestHandler(t)
	token := getToken(t, e, "user2", seed.DefaultPassword)

	w, env := e.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user2@example.com", decodeData[models.User](t, env).Email)

	w, env = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"email": "u2@example.org"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decodeData[models.User](t, env)
	assert.Equal(t, "u2@example.org", profile.Email)
	assert.Equal(t, "user2", profile.Username)

	w, env = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"username": "user3"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Username already exists", env.Error)

	w, env = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"email": "admin@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Email already exists", env.Error)

	w, env = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No fields to update", env.Error)

	w, env = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"username"}, fieldsOf(env.Details))

	for _, name := range []string{"   ", " ab "} {
		w, env = e.do(t, http.MethodPut, "/api/users/profile", token, map[string]any{"username": name})
		assert.Equal(t, http.StatusBadRequest, w.Code, "%q", name)
		assert.Equal(t, []string{"username"}, fieldsOf(env.Details), "%q", name)
	}
	w, env = e.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user2", decodeData[models.User](t, env).Username)

	w, env = e.do(t, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]models.User](t, env), 4)
}

func TestHealthAndNoRoute(t *testing.T) {
	e := setupTestHandler(t)

	w, _ := e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w, env := e.do(t, http.MethodGet, "/api/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", env.Error)

	require.NoError(t, e.storage.Close())
	w, _ = e.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
