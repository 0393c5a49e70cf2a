package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/catalog-admin-api/internal/api"
	"github.com/catalog-admin-api/internal/auth"
	"github.com/catalog-admin-api/internal/config"
	"github.com/catalog-admin-api/internal/mocks"
	"github.com/catalog-admin-api/internal/models"
	"github.com/catalog-admin-api/internal/repository"
	"github.com/catalog-admin-api/internal/service"
	"github.com/catalog-admin-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

type apiHarness struct {
	router       *gin.Engine
	userRepo     *mocks.MockUserRepository
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	jobRepo      *mocks.MockJobRepository
	importSvc    *mocks.MockImportService
	reportSvc    *mocks.MockReportService
}

func setupTestRouter(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewMockUserRepository()
	categoryRepo := mocks.NewMockCategoryRepository()
	productRepo := mocks.NewMockProductRepository()
	jobRepo := mocks.NewMockJobRepository()

	repos := &repository.Repositories{
		User:     userRepo,
		Category: categoryRepo,
		Product:  productRepo,
		Job:      jobRepo,
	}

	importSvc := mocks.NewMockImportService()
	reportSvc := mocks.NewMockReportService()
	services := &service.Services{
		Import: importSvc,
		Report: reportSvc,
	}

	uploadDir := t.TempDir()
	files, err := storage.NewDiskStore(uploadDir)
	if err != nil {
		t.Fatalf("Failed to create disk store: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth: config.AuthConfig{
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		},
		Import: config.ImportConfig{
			BatchSize:     100,
			MaxUploadSize: 1024 * 1024,
			UploadDir:     uploadDir,
		},
	}

	log := zerolog.Nop()
	router := api.NewRouter(repos, services, cfg, files, nil, log)

	return &apiHarness{
		router:       router,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		jobRepo:      jobRepo,
		importSvc:    importSvc,
		reportSvc:    reportSvc,
	}
}

func (h *apiHarness) token(t *testing.T, role string) string {
	t.Helper()
	user := &models.User{Email: role + "@test.com", Name: "Test", Role: role, IsActive: true}
	h.userRepo.Create(context.Background(), user)
	token, err := auth.GenerateToken(testSecret, user.ID, user.Email, role, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return token
}

func (h *apiHarness) request(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	h := setupTestRouter(t)

	w := h.request(t, "GET", "/health", "", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["service"] != "catalog-admin-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestAuthRequired(t *testing.T) {
	h := setupTestRouter(t)

	w := h.request(t, "GET", "/v1/products", "", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w = h.request(t, "GET", "/v1/products", "garbage-token", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 with bad token, got %d", w.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h := setupTestRouter(t)

	payload := `{"email":"new@test.com","password":"password123","name":"New User"}`
	w := h.request(t, "POST", "/v1/auth/register", "", bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate registration conflicts
	w = h.request(t, "POST", "/v1/auth/register", "", bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", w.Code)
	}

	login := `{"email":"new@test.com","password":"password123"}`
	w = h.request(t, "POST", "/v1/auth/login", "", bytes.NewBufferString(login), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Token == "" {
		t.Fatal("Login should return a token")
	}

	// Token works against /v1/auth/me
	w = h.request(t, "GET", "/v1/auth/me", response.Token, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /auth/me, got %d", w.Code)
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	h := setupTestRouter(t)

	payload := `{"email":"inactive@test.com","password":"password123","name":"Inactive"}`
	h.request(t, "POST", "/v1/auth/register", "", bytes.NewBufferString(payload), "application/json")

	user, _ := h.userRepo.GetByEmail(context.Background(), "inactive@test.com")
	user.IsActive = false
	h.userRepo.Update(context.Background(), user)

	// Valid credentials on a deactivated account
	login := `{"email":"inactive@test.com","password":"password123"}`
	w := h.request(t, "POST", "/v1/auth/login", "", bytes.NewBufferString(login), "application/json")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for inactive account, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "account is inactive") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}

	// Wrong password still reports the generic credential failure
	login = `{"email":"inactive@test.com","password":"wrong-password"}`
	w = h.request(t, "POST", "/v1/auth/login", "", bytes.NewBufferString(login), "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad credentials, got %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "user")

	payload := `{"name":"Renamed","email":"renamed@test.com"}`
	w := h.request(t, "PUT", "/v1/auth/me", token, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated models.User
	json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Name != "Renamed" || updated.Email != "renamed@test.com" {
		t.Errorf("Unexpected profile: %+v", updated)
	}

	// Taking another account's email conflicts
	other := &models.User{Email: "taken@test.com", Name: "Other", Role: "user", IsActive: true}
	h.userRepo.Create(context.Background(), other)

	payload = `{"email":"taken@test.com"}`
	w = h.request(t, "PUT", "/v1/auth/me", token, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for taken email, got %d", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := setupTestRouter(t)

	payload := `{"email":"u@test.com","password":"password123","name":"U"}`
	h.request(t, "POST", "/v1/auth/register", "", bytes.NewBufferString(payload), "application/json")

	login := `{"email":"u@test.com","password":"wrong-password"}`
	w := h.request(t, "POST", "/v1/auth/login", "", bytes.NewBufferString(login), "application/json")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}
}

func TestUsersRoute_RequiresAdmin(t *testing.T) {
	h := setupTestRouter(t)

	w := h.request(t, "GET", "/v1/users", h.token(t, "user"), nil, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", w.Code)
	}

	w = h.request(t, "GET", "/v1/users", h.token(t, "admin"), nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for admin, got %d", w.Code)
	}
}

func TestUserCreate_AdminOnly(t *testing.T) {
	h := setupTestRouter(t)

	payload := `{"email":"new@test.com","password":"password123","name":"New Admin","role":"admin"}`
	w := h.request(t, "POST", "/v1/users", h.token(t, "user"), bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", w.Code)
	}

	admin := h.token(t, "admin")
	w = h.request(t, "POST", "/v1/users", admin, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.User
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Email != "new@test.com" || created.Role != "admin" || !created.IsActive {
		t.Errorf("Unexpected user: %+v", created)
	}

	// Same email again conflicts
	w = h.request(t, "POST", "/v1/users", admin, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate email, got %d", w.Code)
	}

	payload = `{"email":"bad@test.com","password":"password123","name":"Bad","role":"superuser"}`
	w = h.request(t, "POST", "/v1/users", admin, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown role, got %d", w.Code)
	}
}

func TestCategoryCRUD(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	payload := `{"name":"Tools","description":"Hand tools"}`
	w := h.request(t, "POST", "/v1/categories", token, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created models.Category
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Name != "Tools" {
		t.Errorf("Expected name 'Tools', got %q", created.Name)
	}

	w = h.request(t, "GET", "/v1/categories", token, nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	w = h.request(t, "GET", "/v1/categories/999", token, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for missing category, got %d", w.Code)
	}
}

func TestProductCreate_RejectsUnknownCategory(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	payload := `{"name":"Widget","price":9.99,"category_id":42}`
	w := h.request(t, "POST", "/v1/products", token, bytes.NewBufferString(payload), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Category with ID 42 not found") {
		t.Errorf("Unexpected body: %s", w.Body.String())
	}
}

func multipartUpload(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestBulkImport_AcceptsCSVUpload(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	body, contentType := multipartUpload(t, "file", "products.csv", "name,price,category_id\nA,1.00,1\n")
	w := h.request(t, "POST", "/v1/products/bulk", token, body, contentType)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		JobID string `json:"job_id"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.JobID == "" {
		t.Error("Response should carry a job id")
	}
	if len(h.importSvc.SubmittedJobs) != 1 {
		t.Fatalf("Expected 1 submitted job, got %d", len(h.importSvc.SubmittedJobs))
	}
	if h.importSvc.SubmittedJobs[0].FileType != ".csv" {
		t.Errorf("Expected .csv file type, got %q", h.importSvc.SubmittedJobs[0].FileType)
	}
}

func TestBulkImport_RejectsBadExtension(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	body, contentType := multipartUpload(t, "file", "products.pdf", "not a spreadsheet")
	w := h.request(t, "POST", "/v1/products/bulk", token, body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
	if len(h.importSvc.SubmittedJobs) != 0 {
		t.Error("No job should be submitted for a rejected upload")
	}
}

func TestBulkImport_RequiresFile(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	w := h.request(t, "POST", "/v1/products/bulk", token, nil, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestBulkImportStatus(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	h.importSvc.StatusFunc = func(ctx context.Context, id string) (*models.JobStatusResponse, error) {
		if id != "known-job" {
			return nil, nil
		}
		return &models.JobStatusResponse{
			JobID:    id,
			State:    models.JobStateCompleted,
			Progress: 100,
			Result: &models.ImportResult{
				TotalRows:      5,
				ProcessedCount: 4,
				ErrorCount:     1,
				Errors:         []models.ImportError{{Row: 3, Error: "Missing required fields (name, price, category_id)"}},
			},
		}, nil
	}

	w := h.request(t, "GET", "/v1/products/bulk/known-job", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var status models.JobStatusResponse
	json.Unmarshal(w.Body.Bytes(), &status)
	if status.State != models.JobStateCompleted {
		t.Errorf("Expected completed state, got %s", status.State)
	}
	if status.Result == nil || status.Result.ErrorCount != 1 {
		t.Errorf("Unexpected result: %+v", status.Result)
	}

	w = h.request(t, "GET", "/v1/products/bulk/unknown-job", token, nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown job, got %d", w.Code)
	}
}

func TestReportDownload(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	w := h.request(t, "GET", "/v1/reports/products?format=csv", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected CSV content type, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Expected attachment disposition, got %q", cd)
	}
	if h.reportSvc.CSVCalls != 1 {
		t.Errorf("Expected one CSV stream call, got %d", h.reportSvc.CSVCalls)
	}

	w = h.request(t, "GET", "/v1/reports/products?format=pdf", token, nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad format, got %d", w.Code)
	}
}

func TestTemplateDownload(t *testing.T) {
	h := setupTestRouter(t)
	token := h.token(t, "admin")

	w := h.request(t, "GET", "/v1/reports/template", token, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Expected CSV content type, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "product_upload_template.csv") {
		t.Errorf("Expected template filename in disposition, got %q", cd)
	}
	if h.reportSvc.TemplateCalls != 1 {
		t.Errorf("Expected one template call, got %d", h.reportSvc.TemplateCalls)
	}

	w = h.request(t, "GET", "/v1/reports/template?format=pdf", token, nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad format, got %d", w.Code)
	}
}
