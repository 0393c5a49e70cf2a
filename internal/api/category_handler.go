package api

import (
	"net/http"
	"strconv"

	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CategoryHandler handles category CRUD endpoints
type CategoryHandler struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(repos *repository.Repositories, log zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		repos: repos,
		log:   log.With().Str("handler", "category").Logger(),
	}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// List handles GET /v1/categories
func (h *CategoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	opts := repository.CategoryListOptions{
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
		Search: c.Query("search"),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		opts.IsActive = &active
	}

	categories, total, err := h.repos.Category.List(ctx, opts)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"pagination": paginate(total, opts.Page, opts.Limit),
	})
}

// Get handles GET /v1/categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	category, err := h.repos.Category.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("category_id", id).Msg("Failed to get category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get category"})
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// Create handles POST /v1/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.repos.Category.Create(ctx, category); err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create category"})
		return
	}

	h.log.Info().Int("category_id", category.ID).Str("name", category.Name).Msg("Category created")

	c.JSON(http.StatusCreated, category)
}

// Update handles PUT /v1/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.repos.Category.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("category_id", id).Msg("Failed to get category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.repos.Category.Update(ctx, category); err != nil {
		h.log.Error().Err(err).Int("category_id", id).Msg("Failed to update category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /v1/categories/:id
// A category with products cannot be deleted.
func (h *CategoryHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}

	count, err := h.repos.Category.ProductCount(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("category_id", id).Msg("Failed to count products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "category has products and cannot be deleted"})
		return
	}

	if err := h.repos.Category.Delete(ctx, id); err != nil {
		h.log.Error().Err(err).Int("category_id", id).Msg("Failed to delete category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete category"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
