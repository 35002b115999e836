package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/fin-ng/backend/events"
	"github.com/nemopss/fin-ng/backend/models"
)

const msgTransactionNotFound = "Transaction not found"

// GetTransactions godoc
// @Summary List transactions
// @Description Filters are combined with AND. Results are ordered by date, newest first.
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size (max 100)" default(20)
// @Param search query string false "Substring of description, user id or amount"
// @Param category query string false "Revenue or Expense"
// @Param status query string false "Paid or Pending"
// @Param user query string false "Owner user id"
// @Param dateFrom query string false "Inclusive lower date bound"
// @Param dateTo query string false "Inclusive upper date bound"
// @Param amountFrom query number false "Inclusive minimum amount"
// @Param amountTo query number false "Inclusive maximum amount"
// @Success 200 {object} models.Envelope{data=[]models.Transaction,pagination=models.Pagination}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/transactions [get]
func (h *Handler) GetTransactions(c *gin.Context) {
	var q models.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, err)
		return
	}
	f := q.Filter()

	items, total, err := h.storage.ListTransactions(c.Request.Context(), f, h.owner(c))
	if err != nil {
		h.internalError(c, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, models.Envelope{
		Success:    true,
		Data:       items,
		Pagination: models.NewPagination(f, total),
	})
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.Envelope{data=models.Transaction}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/transactions/{id} [get]
func (h *Handler) GetTransaction(c *gin.Context) {
	t, err := h.storage.GetTransaction(c.Request.Context(), c.Param("id"), h.owner(c))
	if err != nil {
		h.storeError(c, "get transaction", err, msgTransactionNotFound)
		return
	}
	respondData(c, http.StatusOK, t)
}

// CreateTransaction godoc
// @Summary Create a transaction owned by the current user
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param transaction body models.CreateTransaction true "Transaction"
// @Success 201 {object} models.Envelope{data=models.Transaction}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/transactions [post]
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransaction
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	date, _, err := models.ParseDate(req.Date)
	if err != nil {
		respondValidation(c, err)
		return
	}

	t, err := h.storage.CreateTransaction(c.Request.Context(), models.Transaction{
		Date:        date,
		Amount:      *req.Amount,
		Category:    req.Category,
		Status:      req.Status,
		UserID:      currentUserID(c),
		UserProfile: req.UserProfile,
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		h.internalError(c, "create transaction", err)
		return
	}

	h.publish(c, events.TransactionCreated, t.ID, &t)
	respondData(c, http.StatusCreated, t)
}

// UpdateTransaction godoc
// @Summary Partially update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Transaction ID"
// @Param transaction body models.UpdateTransaction true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.Transaction}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/transactions/{id} [put]
func (h *Handler) UpdateTransaction(c *gin.Context) {
	var req models.UpdateTransaction
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.IsEmpty() {
		respondError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	upd := models.TransactionUpdate{
		Amount:   req.Amount,
		Category: req.Category,
		Status:   req.Status,
	}
	if req.Date != nil {
		date, _, err := models.ParseDate(*req.Date)
		if err != nil {
			respondValidation(c, err)
			return
		}
		upd.Date = &date
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		upd.Description = &desc
	}

	t, err := h.storage.UpdateTransaction(c.Request.Context(), c.Param("id"), upd, h.owner(c))
	if err != nil {
		h.storeError(c, "update transaction", err, msgTransactionNotFound)
		return
	}

	h.publish(c, events.TransactionUpdated, t.ID, &t)
	respondData(c, http.StatusOK, t)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/transactions/{id} [delete]
func (h *Handler) DeleteTransaction(c *gin.Context) {
	id := c.Param("id")
	if err := h.storage.DeleteTransaction(c.Request.Context(), id, h.owner(c)); err != nil {
		h.storeError(c, "delete transaction", err, msgTransactionNotFound)
		return
	}

	h.publish(c, events.TransactionDeleted, id, nil)
	c.JSON(http.StatusOK, models.Envelope{Success: true, Message: "Transaction deleted successfully"})
}

// publish отправляет событие; ошибка брокера только логируется.
func (h *Handler) publish(c *gin.Context, kind events.Kind, id string, t *models.Transaction) {
	e := events.NewTransactionEvent(kind, id, currentUserID(c), t)
	if err := h.publisher.Publish(c.Request.Context(), e); err != nil {
		h.logger.WarnContext(c.Request.Context(), "Failed to publish event",
			"kind", kind, "transaction_id", id, "error", err)
	}
}
