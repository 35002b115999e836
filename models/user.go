package models

import "time"

type User struct {
	ID        string    `json:"id" example:"4b0e5c8a-1d1f-4c36-9d5e-2f1b8c0d9a11"`
	Username  string    `json:"username" example:"john_doe"`
	Password  string    `json:"-"`
	Email     string    `json:"email,omitempty" example:"john@example.com"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserUpdate: пустой Email при непустом указателе очищает адрес.
type UserUpdate struct {
	Username *string
	Email    *string
}

func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil
}
