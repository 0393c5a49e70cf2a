package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/catalog-admin-api/internal/validation"
	"github.com/rs/zerolog"
	"github.com/tealeg/xlsx/v3"
)

var reportHeader = []string{
	"Product ID",
	"Product Name",
	"Description",
	"Price",
	"Category",
	"Stock Quantity",
	"Status",
	"Created At",
}

// reportService is the concrete implementation of ReportService
type reportService struct {
	repos *repository.Repositories
	log   zerolog.Logger
}

// newReportService creates a new ReportService
func newReportService(repos *repository.Repositories, log zerolog.Logger) *reportService {
	return &reportService{
		repos: repos,
		log:   log.With().Str("service", "report").Logger(),
	}
}

// StreamProductsCSV writes the filtered product catalog to w as CSV,
// one row at a time, without buffering the full result set.
func (s *reportService) StreamProductsCSV(ctx context.Context, w io.Writer, filter models.ProductFilter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	count := 0
	err := s.repos.Product.StreamAll(ctx, filter, func(p *models.Product) error {
		count++
		return cw.Write(reportRow(p))
	})
	if err != nil {
		return fmt.Errorf("failed to stream products: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}

	s.log.Info().Int("rows", count).Msg("Generated CSV product report")
	return nil
}

// StreamProductsXLSX writes the filtered product catalog to w as a
// single-sheet XLSX workbook.
func (s *reportService) StreamProductsXLSX(ctx context.Context, w io.Writer, filter models.ProductFilter) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range reportHeader {
		header.AddCell().SetString(col)
	}

	count := 0
	err = s.repos.Product.StreamAll(ctx, filter, func(p *models.Product) error {
		count++
		row := sheet.AddRow()
		for _, val := range reportRow(p) {
			row.AddCell().SetString(val)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to stream products: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.log.Info().Int("rows", count).Msg("Generated XLSX product report")
	return nil
}

// templateSample is one example row distributed with the upload
// template so the expected value formats are visible.
var templateSample = []string{
	"Sample Product", "19.99", "1", "A short product description", "10", "https://example.com/image.png",
}

// templateHeader derives the upload template columns from the import
// schema, required columns first.
func templateHeader() []string {
	header := make([]string, 0, len(validation.ProductColumns))
	for _, col := range validation.ProductColumns {
		header = append(header, col.Name)
	}
	return header
}

// WriteTemplateCSV writes a sample bulk upload template to w as CSV.
func (s *reportService) WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(templateHeader()); err != nil {
		return fmt.Errorf("failed to write template header: %w", err)
	}
	if err := cw.Write(templateSample); err != nil {
		return fmt.Errorf("failed to write template row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplateXLSX writes a sample bulk upload template to w as a
// single-sheet XLSX workbook.
func (s *reportService) WriteTemplateXLSX(w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range templateHeader() {
		header.AddCell().SetString(col)
	}
	sample := sheet.AddRow()
	for _, val := range templateSample {
		sample.AddCell().SetString(val)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// reportRow flattens a product into report cell values
func reportRow(p *models.Product) []string {
	status := "Inactive"
	if p.IsActive {
		status = "Active"
	}
	return []string{
		p.UniqueID,
		p.Name,
		p.Description,
		strconv.FormatFloat(p.Price, 'f', 2, 64),
		p.CategoryName,
		strconv.Itoa(p.StockQuantity),
		status,
		p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
