// Package seed holds the demo dataset: four users sharing one password and
// ten transactions spread over 2024.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/models"
)

const DefaultPassword = "password123"

var Usernames = []string{"admin", "user1", "user2", "user3"}

var ErrAlreadySeeded = errors.New("store already has users")

type row struct {
	date        string
	amount      string
	category    models.Category
	status      models.Status
	owner       int
	description string
}

var rows = []row{
	{"2024-01-15T08:34:12Z", "1500.00", models.CategoryRevenue, models.StatusPaid, 0, "Product sales revenue"},
	{"2024-02-21T11:14:38Z", "1200.50", models.CategoryExpense, models.StatusPaid, 1, "Office supplies purchase"},
	{"2024-03-03T18:22:04Z", "300.75", models.CategoryRevenue, models.StatusPending, 2, "Consulting services"},
	{"2024-04-10T05:03:11Z", "5000.00", models.CategoryExpense, models.StatusPaid, 3, "Equipment purchase"},
	{"2024-05-20T12:01:45Z", "800.00", models.CategoryRevenue, models.StatusPending, 0, "Service fees"},
	{"2024-06-12T03:13:09Z", "2200.25", models.CategoryExpense, models.StatusPaid, 1, "Marketing campaign"},
	{"2024-07-14T09:45:33Z", "900.00", models.CategoryRevenue, models.StatusPending, 2, "License fees"},
	{"2024-08-05T17:30:23Z", "150.00", models.CategoryExpense, models.StatusPaid, 3, "Utility bills"},
	{"2024-09-10T02:10:59Z", "650.00", models.CategoryRevenue, models.StatusPaid, 0, "Subscription revenue"},
	{"2024-10-30T14:55:12Z", "1200.00", models.CategoryExpense, models.StatusPending, 1, "Software licenses"},
}

// Users returns the demo accounts with the given password hash.
func Users(passwordHash string) []models.User {
	users := make([]models.User, 0, len(Usernames))
	for _, name := range Usernames {
		users = append(users, models.User{
			Username: name,
			Password: passwordHash,
			Email:    name + "@example.com",
		})
	}
	return users
}

// Transactions returns the demo transactions; userIDs are indexed like Usernames.
func Transactions(userIDs []string) []models.Transaction {
	txs := make([]models.Transaction, 0, len(rows))
	for _, r := range rows {
		date, err := time.Parse(time.RFC3339, r.date)
		if err != nil {
			panic(err)
		}
		txs = append(txs, models.Transaction{
			Date:        date,
			Amount:      decimal.RequireFromString(r.amount),
			Category:    r.category,
			Status:      r.status,
			UserID:      userIDs[r.owner],
			UserProfile: models.DefaultUserProfile,
			Description: r.description,
		})
	}
	return txs
}

type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	CreateTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)
	CountUsers(ctx context.Context) (int64, error)
}

type Result struct {
	Users        []models.User
	Transactions []models.Transaction
}

// Load наполняет пустое хранилище демо-данными. Если пользователи уже есть,
// возвращает ErrAlreadySeeded и ничего не меняет.
func Load(ctx context.Context, store Store) (Result, error) {
	n, err := store.CountUsers(ctx)
	if err != nil {
		return Result{}, err
	}
	if n > 0 {
		return Result{}, ErrAlreadySeeded
	}

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	var res Result
	ids := make([]string, 0, len(Usernames))
	for _, u := range Users(hash) {
		created, err := store.CreateUser(ctx, u)
		if err != nil {
			return Result{}, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		ids = append(ids, created.ID)
		res.Users = append(res.Users, created)
	}

	for _, t := range Transactions(ids) {
		created, err := store.CreateTransaction(ctx, t)
		if err != nil {
			return Result{}, fmt.Errorf("create transaction %q: %w", t.Description, err)
		}
		res.Transactions = append(res.Transactions, created)
	}
	return res, nil
}
