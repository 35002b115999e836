package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/fin-ng/backend/models"
)

// GetProfile godoc
// @Summary Profile of the current user
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.storage.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.storeError(c, "get profile", err, "User not found")
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update username or email of the current user
// @Tags users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param profile body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	upd := models.UserUpdate{Username: req.Username, Email: req.Email}
	if upd.IsEmpty() {
		respondError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	user, err := h.storage.UpdateUser(c.Request.Context(), currentUserID(c), upd)
	if errors.Is(err, models.ErrConflict) {
		msg := "Email already exists"
		if upd.Username != nil {
			if other, err := h.storage.GetUserByUsername(c.Request.Context(), *upd.Username); err == nil && other.ID != currentUserID(c) {
				msg = "Username already exists"
			}
		}
		respondError(c, http.StatusConflict, msg)
		return
	}
	if err != nil {
		h.storeError(c, "update profile", err, "User not found")
		return
	}
	respondData(c, http.StatusOK, user)
}

// ListUsers godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Envelope{data=[]models.User}
// @Router /api/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.storage.ListUsers(c.Request.Context())
	if err != nil {
		h.internalError(c, "list users", err)
		return
	}
	respondData(c, http.StatusOK, users)
}
