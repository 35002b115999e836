package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/nemopss/fin-ng/backend/models"
)

// GetStats godoc
// @Summary Dashboard totals and monthly revenue/expenses
// @Description monthlyData has one entry per calendar month of the trailing window, oldest first; empty months are zero.
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Envelope{data=models.DashboardStats}
// @Router /api/dashboard/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	owner := h.owner(c)
	now := h.now()
	since, until := models.MonthWindow(now, h.window)

	var (
		summary models.Summary
		monthly []models.MonthlyTotal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = h.storage.Summary(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		monthly, err = h.storage.MonthlyTotals(gctx, owner, since, until)
		return err
	})
	if err := g.Wait(); err != nil {
		h.internalError(c, "dashboard stats", err)
		return
	}

	respondData(c, http.StatusOK, models.DashboardStats{
		Summary:     summary,
		MonthlyData: models.DenseMonthlySeries(monthly, now, h.window),
	})
}

// GetCategoryStats godoc
// @Summary Count, total and average per category
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Envelope{data=[]models.CategoryStat}
// @Router /api/dashboard/categories [get]
func (h *Handler) GetCategoryStats(c *gin.Context) {
	stats, err := h.storage.CategoryBreakdown(c.Request.Context(), h.owner(c))
	if err != nil {
		h.internalError(c, "category stats", err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GetStatusStats godoc
// @Summary Count and total per status
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Envelope{data=[]models.StatusStat}
// @Router /api/dashboard/status [get]
func (h *Handler) GetStatusStats(c *gin.Context) {
	stats, err := h.storage.StatusBreakdown(c.Request.Context(), h.owner(c))
	if err != nil {
		h.internalError(c, "status stats", err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GetRecentTransactions godoc
// @Summary Most recent transactions
// @Tags dashboard
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "How many (max 50)" default(10)
// @Success 200 {object} models.Envelope{data=[]models.Transaction}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/dashboard/recent [get]
func (h *Handler) GetRecentTransactions(c *gin.Context) {
	limit := models.DefaultRecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > models.MaxRecentLimit {
			c.JSON(http.StatusBadRequest, models.Envelope{
				Success: false,
				Error:   "Validation failed",
				Details: []models.FieldError{{Field: "limit", Message: "limit must be between 1 and 50"}},
			})
			return
		}
		limit = n
	}

	items, err := h.storage.RecentTransactions(c.Request.Context(), h.owner(c), limit)
	if err != nil {
		h.internalError(c, "recent transactions", err)
		return
	}
	respondData(c, http.StatusOK, items)
}
