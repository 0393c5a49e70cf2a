package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/catalog-admin-api/internal/service"
	"github.com/catalog-admin-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Spreadsheet extensions accepted by the bulk endpoint
var allowedImportExts = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
}

// ProductHandler handles product CRUD and bulk import endpoints
type ProductHandler struct {
	repos    *repository.Repositories
	services *service.Services
	cfg      *config.Config
	files    storage.FileStore
	log      zerolog.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(repos *repository.Repositories, services *service.Services, cfg *config.Config, files storage.FileStore, log zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		repos:    repos,
		services: services,
		cfg:      cfg,
		files:    files,
		log:      log.With().Str("handler", "product").Logger(),
	}
}

type productRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gte=0"`
	Image         string  `json:"image"`
	CategoryID    int     `json:"category_id" binding:"required"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	IsActive      *bool   `json:"is_active"`
}

// List handles GET /v1/products
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := models.ProductFilter{
		Search:    c.Query("search"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if v := c.Query("min_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := c.Query("max_price"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &p
		}
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)

	products, total, err := h.repos.Product.List(ctx, filter, page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": paginate(total, page, limit),
	})
}

// Get handles GET /v1/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.repos.Product.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("product_id", id).Msg("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// Create handles POST /v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := h.repos.Category.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Category with ID %d not found", req.CategoryID)})
		return
	}

	product := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Image:         req.Image,
		CategoryID:    req.CategoryID,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.repos.Product.Create(ctx, product); err != nil {
		h.log.Error().Err(err).Str("name", req.Name).Msg("Failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Update handles PUT /v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.repos.Product.GetByID(ctx, id)
	if err != nil {
		h.log.Error().Err(err).Int("product_id", id).Msg("Failed to get product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	exists, err := h.repos.Category.CategoryExists(ctx, req.CategoryID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Category with ID %d not found", req.CategoryID)})
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Image = req.Image
	product.CategoryID = req.CategoryID
	product.StockQuantity = req.StockQuantity
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.repos.Product.Update(ctx, product); err != nil {
		h.log.Error().Err(err).Int("product_id", id).Msg("Failed to update product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.repos.Product.Delete(ctx, id); err != nil {
		h.log.Error().Err(err).Int("product_id", id).Msg("Failed to delete product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// BulkImport handles POST /v1/products/bulk
// Accepts a multipart CSV or Excel upload and queues an import job.
func (h *ProductHandler) BulkImport(c *gin.Context) {
	ctx := c.Request.Context()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	if header.Size > h.cfg.Import.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Import.MaxUploadSize/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImportExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file must be CSV or Excel (.csv, .xlsx, .xls)"})
		return
	}

	filename := fmt.Sprintf("products_%s%s", uuid.New().String()[:8], ext)
	filePath, err := h.files.Save(filename, file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	job, err := h.services.Import.SubmitImport(ctx, filePath, ext, currentUserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to queue import job")
		h.files.Remove(filePath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create import job"})
		return
	}

	h.log.Info().
		Str("job_id", job.ID).
		Str("file", header.Filename).
		Int64("size_bytes", header.Size).
		Msg("Bulk import job created")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  job.ID,
		"state":   job.State,
		"message": "Import job created and queued for processing",
	})
}

// BulkImportStatus handles GET /v1/products/bulk/:job_id
func (h *ProductHandler) BulkImportStatus(c *gin.Context) {
	ctx := c.Request.Context()

	jobID := c.Param("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "job_id is required"})
		return
	}

	status, err := h.services.Import.GetStatus(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get job status"})
		return
	}
	if status == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// BulkImportErrors handles GET /v1/products/bulk/:job_id/errors
// Returns the full error list, not the truncated status snapshot.
func (h *ProductHandler) BulkImportErrors(c *gin.Context) {
	ctx := c.Request.Context()

	jobID := c.Param("job_id")
	job, err := h.repos.Job.GetByID(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	errs, err := h.repos.Job.GetErrors(ctx, jobID, 0)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get errors"})
		return
	}
	if errs == nil {
		errs = []models.ImportError{}
	}

	c.JSON(http.StatusOK, gin.H{
		"job_id": jobID,
		"count":  len(errs),
		"errors": errs,
	})
}
