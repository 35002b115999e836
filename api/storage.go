package api

import (
	"context"
	"time"

	"github.com/nemopss/fin-ng/backend/models"
)

// owner == "" во всех методах означает "без ограничения по владельцу".

type UserStorage interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type TransactionStorage interface {
	ListTransactions(ctx context.Context, f models.Filter, owner string) ([]models.Transaction, int64, error)
	GetTransaction(ctx context.Context, id, owner string) (models.Transaction, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, upd models.TransactionUpdate, owner string) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id, owner string) error
}

type DashboardStorage interface {
	Summary(ctx context.Context, owner string) (models.Summary, error)
	MonthlyTotals(ctx context.Context, owner string, since, until time.Time) ([]models.MonthlyTotal, error)
	CategoryBreakdown(ctx context.Context, owner string) ([]models.CategoryStat, error)
	StatusBreakdown(ctx context.Context, owner string) ([]models.StatusStat, error)
	RecentTransactions(ctx context.Context, owner string, limit int) ([]models.Transaction, error)
}

// Storage реализуют db.Storage (PostgreSQL, SQLite) и mongostore.Storage.
type Storage interface {
	UserStorage
	TransactionStorage
	DashboardStorage
	Ping(ctx context.Context) error
	Close() error
}
