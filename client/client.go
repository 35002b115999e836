// Package client is a Go client for the fin-ng API. It keeps the session
// token, mirrors transactions locally and exports them as CSV.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nemopss/fin-ng/backend/models"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Details    []models.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Message)
	}
	return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
	user  *models.User
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// User returns the account of the current session, or nil before login.
func (c *Client) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.user = nil
}

func (c *Client) Login(ctx context.Context, username, password string) (models.AuthResponse, error) {
	var res models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: username, Password: password}, &res, nil)
	if err != nil {
		return models.AuthResponse{}, err
	}
	c.setSession(res)
	return res, nil
}

func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	var res models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &res, nil); err != nil {
		return models.AuthResponse{}, err
	}
	c.setSession(res)
	return res, nil
}

func (c *Client) setSession(res models.AuthResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = res.Token
	user := res.User
	c.user = &user
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u, nil)
	return u, err
}

// ListTransactions fetches one page matching f.
func (c *Client) ListTransactions(ctx context.Context, f models.Filter) ([]models.Transaction, models.Pagination, error) {
	var (
		items []models.Transaction
		page  models.Pagination
	)
	path := "/api/transactions"
	if q := f.Values().Encode(); q != "" {
		path += "?" + q
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &items, &page); err != nil {
		return nil, models.Pagination{}, err
	}
	return items, page, nil
}

// FetchAll walks every page of the listing for f, ignoring f's own paging.
func (c *Client) FetchAll(ctx context.Context, f models.Filter) ([]models.Transaction, error) {
	f.Page, f.Limit = 1, models.MaxLimit
	var all []models.Transaction
	for {
		items, page, err := c.ListTransactions(ctx, f)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) == 0 || f.Page >= page.TotalPages {
			return all, nil
		}
		f.Page++
	}
}

func (c *Client) GetTransaction(ctx context.Context, id string) (models.Transaction, error) {
	var t models.Transaction
	err := c.do(ctx, http.MethodGet, "/api/transactions/"+url.PathEscape(id), nil, &t, nil)
	return t, err
}

func (c *Client) CreateTransaction(ctx context.Context, req models.CreateTransaction) (models.Transaction, error) {
	var t models.Transaction
	err := c.do(ctx, http.MethodPost, "/api/transactions", req, &t, nil)
	return t, err
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, req models.UpdateTransaction) (models.Transaction, error) {
	var t models.Transaction
	err := c.do(ctx, http.MethodPut, "/api/transactions/"+url.PathEscape(id), req, &t, nil)
	return t, err
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/transactions/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) Stats(ctx context.Context) (models.DashboardStats, error) {
	var s models.DashboardStats
	err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &s, nil)
	return s, err
}

type envelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Error      string              `json:"error"`
	Details    []models.FieldError `json:"details"`
	Pagination *models.Pagination  `json:"pagination"`
}

// do отправляет запрос и раскладывает конверт ответа в data и pagination.
func (c *Client) do(ctx context.Context, method, path string, body, data any, page *models.Pagination) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg, Details: env.Details}
	}

	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	if page != nil && env.Pagination != nil {
		*page = *env.Pagination
	}
	return nil
}
