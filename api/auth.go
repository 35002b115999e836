package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nemopss/fin-ng/backend/auth"
	"github.com/nemopss/fin-ng/backend/models"
)

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "New account"
// @Success 201 {object} models.Envelope{data=models.AuthResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(c, "register", err)
		return
	}

	user, err := h.storage.CreateUser(c.Request.Context(), models.User{
		Username: req.Username,
		Password: hash,
		Email:    req.Email,
	})
	if errors.Is(err, models.ErrConflict) {
		respondError(c, http.StatusConflict, h.conflictMessage(c, req.Username))
		return
	}
	if err != nil {
		h.internalError(c, "register", err)
		return
	}

	token, _, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.internalError(c, "register", err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "User registered", "user_id", user.ID, "username", user.Username)
	respondData(c, http.StatusCreated, models.AuthResponse{User: user, Token: token})
}

// Login godoc
// @Summary Log in and receive a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} models.Envelope{data=models.AuthResponse}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.storage.GetUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, models.ErrNotFound) {
		// сравнение с фиктивным хешем, чтобы время ответа не выдавало наличие пользователя
		auth.BurnCompare(req.Password)
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.internalError(c, "login", err)
		return
	}
	if !auth.CheckPassword(req.Password, user.Password) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, _, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.internalError(c, "login", err)
		return
	}
	respondData(c, http.StatusOK, models.AuthResponse{User: user, Token: token})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.Envelope{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.storage.GetUserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.storeError(c, "me", err, "User not found")
		return
	}
	respondData(c, http.StatusOK, user)
}

// conflictMessage уточняет, что именно занято: имя или email.
func (h *Handler) conflictMessage(c *gin.Context, username string) string {
	if _, err := h.storage.GetUserByUsername(c.Request.Context(), username); err == nil {
		return "Username already exists"
	}
	return "Email already exists"
}
