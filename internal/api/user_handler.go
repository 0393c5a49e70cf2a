package api

import (
	"net/http"
	"strconv"

	"github.com/catalog-admin-api/internal/auth"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(repos *repository.Repositories, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		repos: repos,
		log:   log.With().Str("handler", "user").Logger(),
	}
}

// List handles GET /v1/users
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	opts := repository.UserListOptions{
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		opts.IsActive = &active
	}

	users, total, err := h.repos.User.List(ctx, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"pagination": paginate(total, opts.Page, opts.Limit),
	})
}

// Create handles POST /v1/users
// Unlike self-registration, admins may set the role directly.
func (h *UserHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name" binding:"required"`
		Role     string `json:"role"`
		IsActive *bool  `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = "user"
	}
	if !models.ValidRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be one of: admin, user"})
		return
	}

	existing, err := h.repos.User.GetByEmail(ctx, req.Email)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to look up email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         req.Role,
		IsActive:     true,
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if err := h.repos.User.Create(ctx, user); err != nil {
		h.log.Error().Err(err).Msg("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	h.log.Info().Int("user_id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("User created")

	c.JSON(http.StatusCreated, user)
}

// Get handles GET /v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.repos.User.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("user_id", id).Msg("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update handles PUT /v1/users/:id
// Admins can change name, role and active flag; email is immutable.
func (h *UserHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role != nil && !models.ValidRoles[*req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be one of: admin, user"})
		return
	}

	user, err := h.repos.User.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("user_id", id).Msg("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.repos.User.Update(ctx, user); err != nil {
		h.log.Error().Err(err).Int("user_id", id).Msg("Failed to update user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if id == currentUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete your own account"})
		return
	}

	if err := h.repos.User.Delete(ctx, id); err != nil {
		h.log.Error().Err(err).Int("user_id", id).Msg("Failed to delete user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// queryInt reads an integer query parameter with a fallback
func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// paginate builds page metadata for list responses
func paginate(total, page, limit int) models.Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return models.Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}
