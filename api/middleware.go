package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// AuthMiddleware проверяет Bearer-токен и кладёт userID и username в контекст.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			abortError(c, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := h.tokens.Verify(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// owner возвращает ограничение по владельцу для чтения и изменения транзакций.
func (h *Handler) owner(c *gin.Context) string {
	if h.perUser {
		return currentUserID(c)
	}
	return ""
}
