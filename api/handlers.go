package api

import (
	"io"
	"log/slog"
	"time"

	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/events"
	"github.com/nemopss/fin-ng/backend/models"
)

type Handler struct {
	storage   Storage
	tokens    *auth.TokenManager
	publisher events.Publisher
	logger    *slog.Logger
	perUser   bool
	window    int
	now       func() time.Time
}

type Option func(*Handler)

func WithPublisher(p events.Publisher) Option {
	return func(h *Handler) { h.publisher = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithPerUserScope управляет тем, видит ли пользователь только свои транзакции
// (true, по умолчанию) или все.
func WithPerUserScope(perUser bool) Option {
	return func(h *Handler) { h.perUser = perUser }
}

func WithStatsWindow(months int) Option {
	return func(h *Handler) {
		if months > 0 {
			h.window = months
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(storage Storage, tokens *auth.TokenManager, opts ...Option) *Handler {
	h := &Handler{
		storage:   storage,
		tokens:    tokens,
		publisher: events.Nop{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		perUser:   true,
		window:    models.DefaultStatsWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
