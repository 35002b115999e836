package models

// Envelope: общий формат всех ответов API.
type Envelope struct {
	Success    bool         `json:"success" example:"true"`
	Data       any          `json:"data,omitempty"`
	Error      string       `json:"error,omitempty" example:"Validation failed"`
	Message    string       `json:"message,omitempty" example:"Transaction deleted successfully"`
	Details    []FieldError `json:"details,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

type FieldError struct {
	Field   string `json:"field" example:"amount"`
	Message string `json:"message" example:"Amount must be a positive number"`
}

type Pagination struct {
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"20"`
	Total      int64 `json:"total" example:"10"`
	TotalPages int   `json:"totalPages" example:"1"`
}

func NewPagination(f Filter, total int64) *Pagination {
	f = f.Normalize()
	return &Pagination{Page: f.Page, Limit: f.Limit, Total: total, TotalPages: TotalPages(total, f.Limit)}
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type ErrorResponse struct {
	Success bool         `json:"success" example:"false"`
	Error   string       `json:"error" example:"Invalid credentials"`
	Details []FieldError `json:"details,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Transaction deleted successfully"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
