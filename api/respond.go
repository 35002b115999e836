package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/fin-ng/backend/models"
)

const msgInternal = "Internal server error"

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, models.Envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, models.Envelope{Success: false, Error: msg})
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.Envelope{Success: false, Error: msg})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.Envelope{
		Success: false,
		Error:   "Validation failed",
		Details: validationDetails(err),
	})
}

// storeError переводит ошибку хранилища в ответ. Неизвестные ошибки
// логируются, клиенту уходит только общий текст.
func (h *Handler) storeError(c *gin.Context, op string, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		respondError(c, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrConflict):
		respondError(c, http.StatusConflict, "Already exists")
	default:
		h.internalError(c, op, err)
	}
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	_ = c.Error(err)
	h.logger.ErrorContext(c.Request.Context(), "Request failed", "op", op, "error", err)
	respondError(c, http.StatusInternalServerError, msgInternal)
}
