package models

type RegisterRequest struct {
	Username string `json:"username" binding:"required,trimmed,min=3,max=30" example:"john_doe"`
	Email    string `json:"email" binding:"omitempty,email,max=254" example:"john@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"password123"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,trimmed,min=3,max=30" example:"john_doe"`
	Email    *string `json:"email" binding:"omitempty,email,max=254" example:"john@example.com"`
}

// CreateTransaction: тело POST /api/transactions. Сумма приходит как число,
// дата как RFC 3339 или YYYY-MM-DD.
type CreateTransaction struct {
	Date        string   `json:"date" binding:"required,txdate" example:"2024-01-15T08:34:12Z"`
	Amount      *Amount  `json:"amount" binding:"required,gte=0" swaggertype:"number" example:"1500.00"`
	Category    Category `json:"category" binding:"required,oneof=Revenue Expense" example:"Revenue"`
	Status      Status   `json:"status" binding:"required,oneof=Paid Pending" example:"Paid"`
	Description string   `json:"description" binding:"required,notblank,max=500" example:"Product sales revenue"`
	UserProfile string   `json:"userProfile" binding:"omitempty,url" example:"https://thispersondoesnotexist.com/"`
}

type UpdateTransaction struct {
	Date        *string   `json:"date" binding:"omitempty,txdate" example:"2024-01-15"`
	Amount      *Amount   `json:"amount" binding:"omitempty,gte=0" swaggertype:"number" example:"1200.50"`
	Category    *Category `json:"category" binding:"omitempty,oneof=Revenue Expense" example:"Expense"`
	Status      *Status   `json:"status" binding:"omitempty,oneof=Paid Pending" example:"Pending"`
	Description *string   `json:"description" binding:"omitempty,notblank,max=500" example:"Office supplies purchase"`
}

func (u UpdateTransaction) IsEmpty() bool {
	return u.Date == nil && u.Amount == nil && u.Category == nil && u.Status == nil && u.Description == nil
}

// ListTransactionsQuery: параметры GET /api/transactions.
type ListTransactionsQuery struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search     string `form:"search" binding:"max=200"`
	Category   string `form:"category" binding:"omitempty,oneof=Revenue Expense"`
	Status     string `form:"status" binding:"omitempty,oneof=Paid Pending"`
	User       string `form:"user"`
	DateFrom   string `form:"dateFrom" binding:"omitempty,txdate"`
	DateTo     string `form:"dateTo" binding:"omitempty,txdate"`
	AmountFrom string `form:"amountFrom" binding:"omitempty,amount"`
	AmountTo   string `form:"amountTo" binding:"omitempty,amount"`
}

// Filter converts an already validated query into a Filter.
func (q ListTransactionsQuery) Filter() Filter {
	f := Filter{
		Search:   q.Search,
		Category: Category(q.Category),
		Status:   Status(q.Status),
		User:     q.User,
		Page:     q.Page,
		Limit:    q.Limit,
	}
	if q.DateFrom != "" {
		if t, err := ParseLowerBound(q.DateFrom); err == nil {
			f.DateFrom = &t
		}
	}
	if q.DateTo != "" {
		if t, err := ParseUpperBound(q.DateTo); err == nil {
			f.DateTo = &t
		}
	}
	if q.AmountFrom != "" {
		if a, err := ParseAmount(q.AmountFrom); err == nil {
			f.AmountFrom = &a
		}
	}
	if q.AmountTo != "" {
		if a, err := ParseAmount(q.AmountTo); err == nil {
			f.AmountTo = &a
		}
	}
	return f.Normalize()
}
