package benchmark

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/catalog-admin-api/internal/mocks"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/parser"
	"github.com/catalog-admin-api/internal/validation"
)

// writeCSV generates a product CSV with n data rows.
func writeCSV(b *testing.B, n int) string {
	b.Helper()
	path := filepath.Join(b.TempDir(), "bench.csv")
	f, err := os.Create(path)
	if err != nil {
		b.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "name,price,category_id,description,stock_quantity")
	for i := 0; i < n; i++ {
		fmt.Fprintf(f, "Product %d,%d.99,1,Benchmark product,%d\n", i, i%100, i%50)
	}
	return path
}

// BenchmarkCSVParse measures row parsing throughput
func BenchmarkCSVParse(b *testing.B) {
	path := writeCSV(b, 10000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		rows, err := parser.ReadAll(path, ".csv")
		if err != nil {
			b.Fatalf("ReadAll failed: %v", err)
		}
		if len(rows) != 10000 {
			b.Fatalf("Expected 10000 rows, got %d", len(rows))
		}
	}

	b.ReportMetric(float64(10000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkValidateRows measures validation throughput against an
// in-memory category lookup
func BenchmarkValidateRows(b *testing.B) {
	categoryRepo := mocks.NewMockCategoryRepository()
	categoryRepo.Create(context.Background(), &models.Category{ID: 1, Name: "Bench"})
	validator := validation.NewProductRowValidator(categoryRepo)

	rows := make([]parser.Row, 1000)
	for i := range rows {
		rows[i] = parser.Row{
			Number: i + 2,
			Fields: map[string]string{
				"name":           fmt.Sprintf("Product %d", i),
				"price":          "9.99",
				"category_id":    "1",
				"stock_quantity": "5",
			},
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		for _, row := range rows {
			if _, rowErr := validator.Validate(ctx, row); rowErr != nil {
				b.Fatalf("Unexpected row error: %v", rowErr)
			}
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkProductInsert measures mock batch insert throughput
func BenchmarkProductInsert(b *testing.B) {
	ctx := context.Background()

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		productRepo := mocks.NewMockProductRepository()
		for j := 0; j < 1000; j++ {
			productRepo.Create(ctx, &models.Product{
				Name:       fmt.Sprintf("Product %d", j),
				Price:      9.99,
				CategoryID: 1,
			})
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkStreamProducts measures report streaming throughput
func BenchmarkStreamProducts(b *testing.B) {
	productRepo := mocks.NewMockProductRepository()
	for i := 0; i < 1000; i++ {
		productRepo.Create(context.Background(), &models.Product{
			Name:       fmt.Sprintf("Product %d", i),
			Price:      9.99,
			CategoryID: 1,
			IsActive:   true,
		})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		count := 0
		productRepo.StreamAll(context.Background(), models.ProductFilter{}, func(p *models.Product) error {
			count++
			return nil
		})
		if count != 1000 {
			b.Fatalf("Expected 1000 products, got %d", count)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
