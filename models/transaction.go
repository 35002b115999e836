package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryRevenue Category = "Revenue"
	CategoryExpense Category = "Expense"
)

func (c Category) Valid() bool {
	return c == CategoryRevenue || c == CategoryExpense
}

type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPending Status = "Pending"
)

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusPending
}

// DefaultUserProfile подставляется, если при создании транзакции профиль не указан.
const DefaultUserProfile = "https://thispersondoesnotexist.com/"

const MaxDescriptionLength = 500

type Transaction struct {
	ID          string          `json:"id" example:"1"`
	Date        time.Time       `json:"date" example:"2024-01-15T08:34:12Z"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"1500.00"`
	Category    Category        `json:"category" example:"Revenue" enums:"Revenue,Expense"`
	Status      Status          `json:"status" example:"Paid" enums:"Paid,Pending"`
	UserID      string          `json:"userId" example:"4b0e5c8a-1d1f-4c36-9d5e-2f1b8c0d9a11"`
	UserProfile string          `json:"userProfile" example:"https://thispersondoesnotexist.com/"`
	Description string          `json:"description" example:"Product sales revenue"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionUpdate описывает частичное обновление: nil означает "не менять".
type TransactionUpdate struct {
	Date        *time.Time
	Amount      *decimal.Decimal
	Category    *Category
	Status      *Status
	Description *string
}

func (u TransactionUpdate) IsEmpty() bool {
	return u.Date == nil && u.Amount == nil && u.Category == nil && u.Status == nil && u.Description == nil
}

// Apply copies the supplied fields onto t. Timestamps are left to the caller.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.Date != nil {
		t.Date = *u.Date
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
}
