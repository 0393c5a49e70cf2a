package api

import (
	"net/http"

	"github.com/catalog-admin-api/internal/auth"
	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and password management
type AuthHandler struct {
	repos *repository.Repositories
	cfg   *config.Config
	log   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		repos: repos,
		cfg:   cfg,
		log:   log.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.repos.User.GetByEmail(ctx, req.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to look up email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         "user",
		IsActive:     true,
	}
	if err := h.repos.User.Create(ctx, user); err != nil {
		h.log.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		return
	}

	h.log.Info().Str("email", user.Email).Int("user_id", user.ID).Msg("User registered")

	c.JSON(http.StatusCreated, user)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.repos.User.GetByEmail(ctx, req.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	// Valid credentials on a deactivated account get a distinct answer
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is inactive"})
		return
	}

	token, err := auth.GenerateToken(h.cfg.Auth.JWTSecret, user.ID, user.Email, user.Role, h.cfg.Auth.TokenTTL)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.repos.User.GetByID(ctx, currentUserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /v1/auth/me
// Callers may change their own name and email; role stays admin-managed.
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email" binding:"omitempty,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.repos.User.GetByID(ctx, currentUserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if req.Email != nil && *req.Email != user.Email {
		existing, err := h.repos.User.GetByEmail(ctx, *req.Email)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to look up email")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
			return
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}

	if err := h.repos.User.Update(ctx, user); err != nil {
		h.log.Error().Err(err).Msg("Failed to update profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword handles POST /v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.repos.User.GetByID(ctx, currentUserID(c))
	if err != nil || user == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	user.PasswordHash = hash
	if err := h.repos.User.Update(ctx, user); err != nil {
		h.log.Error().Err(err).Msg("Failed to update password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
