package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/fin-ng/backend/logging"
)

// NewRouter собирает gin.Engine с логированием запросов и всеми маршрутами API.
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(logger))
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Route not found")
	})
	h.Routes(r)
	return r
}

func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/healthz", h.Health)

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	protected := api.Group("/", h.AuthMiddleware())
	protected.GET("/auth/me", h.Me)

	protected.GET("/users", h.ListUsers)
	protected.GET("/users/profile", h.GetProfile)
	protected.PUT("/users/profile", h.UpdateProfile)

	protected.GET("/transactions", h.GetTransactions)
	protected.GET("/transactions/:id", h.GetTransaction)
	protected.POST("/transactions", h.CreateTransaction)
	protected.PUT("/transactions/:id", h.UpdateTransaction)
	protected.DELETE("/transactions/:id", h.DeleteTransaction)

	protected.GET("/dashboard/stats", h.GetStats)
	protected.GET("/dashboard/categories", h.GetCategoryStats)
	protected.GET("/dashboard/status", h.GetStatusStats)
	protected.GET("/dashboard/recent", h.GetRecentTransactions)
}
