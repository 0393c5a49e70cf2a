package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReportHandler handles product report downloads
type ReportHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(services *service.Services, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		services: services,
		log:      log.With().Str("handler", "report").Logger(),
	}
}

// Products handles GET /v1/reports/products?format=csv|xlsx
func (h *ReportHandler) Products(c *gin.Context) {
	ctx := c.Request.Context()

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	filter := models.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	if v := c.Query("is_active"); v != "" {
		active := v == "true"
		filter.IsActive = &active
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

	filename := fmt.Sprintf("products_report_%s.%s", time.Now().Format("20060102_150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	var err error
	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
		err = h.services.Report.StreamProductsCSV(ctx, c.Writer, filter)
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.services.Report.StreamProductsXLSX(ctx, c.Writer, filter)
	}
	if err != nil {
		// Headers may already be sent; log and abort the stream.
		h.log.Error().Err(err).Str("format", format).Msg("Report generation failed")
		c.Abort()
	}
}

// Template handles GET /v1/reports/template?format=csv|xlsx
// Serves a sample bulk upload template with the import columns.
func (h *ReportHandler) Template(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "product_upload_template."+format))

	var err error
	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
		err = h.services.Report.WriteTemplateCSV(c.Writer)
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = h.services.Report.WriteTemplateXLSX(c.Writer)
	}
	if err != nil {
		h.log.Error().Err(err).Str("format", format).Msg("Template generation failed")
		c.Abort()
	}
}
