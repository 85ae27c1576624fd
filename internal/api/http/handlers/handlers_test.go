package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/employee-directory/internal/api/http"
	"github.com/spec-kit/employee-directory/internal/api/http/handlers"
	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/config"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/observability"
	"github.com/spec-kit/employee-directory/internal/repository"
	"github.com/spec-kit/employee-directory/internal/service"
)

// stubRepo is a minimal in-memory EmployeeRepository for endpoint tests.
type stubRepo struct {
	mu   sync.Mutex
	byID map[string]domain.Employee
	seq  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{byID: make(map[string]domain.Employee)}
}

func (r *stubRepo) Create(_ context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(e.Email)
	for _, existing := range r.byID {
		if existing.Email == email {
			return repository.ErrEmailTaken
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	r.seq++
	e.Email = email
	e.CreatedAt = time.Unix(int64(r.seq), 0)
	e.UpdatedAt = e.CreatedAt
	r.byID[e.ID] = *e
	return nil
}

func (r *stubRepo) Update(_ context.Context, e *domain.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[e.ID]; !ok {
		return pgx.ErrNoRows
	}
	e.Email = strings.ToLower(e.Email)
	r.byID[e.ID] = *e
	return nil
}

func (r *stubRepo) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r *stubRepo) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lowered := strings.ToLower(email)
	for _, e := range r.byID {
		if e.Email == lowered {
			copied := e
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *stubRepo) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Employee
	for _, e := range r.byID {
		all = append(all, e)
	}
	total := len(all)
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > total {
		limit = total
	}
	return all[:limit], total, nil
}

func newTestApp(t *testing.T) (*fiber.App, *stubRepo) {
	t.Helper()
	repo := newStubRepo()

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "endpoint-test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}, repo)
	employeeService := service.NewEmployeeService(repo, nil, nil, zap.NewNop(), bcrypt.MinCost)
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), repo, zap.NewNop())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Employees:      handlers.NewEmployeesHandler(employeeService),
		AuthMiddleware: authMiddleware,
	})
	return app, repo
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func registerEmployee(t *testing.T, app *fiber.App, email string) (id, token string) {
	t.Helper()
	status, body := doRequest(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"firstName": "Test",
		"lastName":  "User",
		"email":     email,
		"password":  "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	employee := body["employee"].(map[string]any)
	return employee["id"].(string), body["token"].(string)
}

func seedAdmin(t *testing.T, app *fiber.App, repo *stubRepo, email string) (id, token string) {
	t.Helper()
	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	admin := &domain.Employee{
		FirstName: "Admin", LastName: "User",
		Email: email, PasswordHash: hash,
		Role: domain.RoleAdmin, Department: "General",
	}
	require.NoError(t, repo.Create(context.Background(), admin))

	status, body := doRequest(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, status)
	return admin.ID, body["token"].(string)
}

func TestRegisterEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "secret1",
	})
	require.Equal(t, http.StatusCreated, status)

	employee := body["employee"].(map[string]any)
	assert.Equal(t, "jane@example.com", employee["email"])
	assert.Equal(t, "employee", employee["role"])
	assert.Equal(t, "General", employee["department"])
	assert.NotContains(t, employee, "password")
	assert.NotContains(t, employee, "passwordHash")
	assert.NotEmpty(t, body["token"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doRequest(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "not-an-email", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid email format", body["message"])

	status, body = doRequest(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "jane@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at least 6 characters long", body["message"])
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	app, _ := newTestApp(t)
	registerEmployee(t, app, "jane@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/auth/register", "", fiber.Map{
		"email": "jane@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Employee already exists", body["message"])
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	app, _ := newTestApp(t)
	registerEmployee(t, app, "jane@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email": "jane@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = doRequest(t, app, http.MethodPost, "/auth/login", "", fiber.Map{
		"email": "nobody@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestValidateTokenEndpoint(t *testing.T) {
	app, repo := newTestApp(t)
	id, token := registerEmployee(t, app, "jane@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/auth/validate-token", token, nil)
	require.Equal(t, http.StatusOK, status)
	employee := body["employee"].(map[string]any)
	assert.Equal(t, "jane@example.com", employee["email"])

	// account removed after issuance: the unexpired token no longer resolves
	require.NoError(t, repo.Delete(context.Background(), id))
	status, body = doRequest(t, app, http.MethodPost, "/auth/validate-token", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Employee Not Found", body["message"])
}

func TestValidateTokenEndpointRejectsBadTokens(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doRequest(t, app, http.MethodPost, "/auth/validate-token", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doRequest(t, app, http.MethodPost, "/auth/validate-token", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestListRequiresAuthentication(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := doRequest(t, app, http.MethodGet, "/employees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestListEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerEmployee(t, app, "jane@example.com")
	registerEmployee(t, app, "bob@example.com")

	status, body := doRequest(t, app, http.MethodGet, "/employees?page=1&limit=10", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(1), body["pages"])
}

func TestSelfDeleteForbidden(t *testing.T) {
	app, _ := newTestApp(t)
	id, token := registerEmployee(t, app, "jane@example.com")

	status, body := doRequest(t, app, http.MethodDelete, "/employees/"+id, token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot delete your own account", body["message"])
}

func TestSelfUpdateForbidden(t *testing.T) {
	app, _ := newTestApp(t)
	id, token := registerEmployee(t, app, "jane@example.com")

	status, body := doRequest(t, app, http.MethodPut, "/employees/"+id, token, fiber.Map{
		"firstName": "Changed",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cannot update your own account", body["message"])
}

func TestDeleteEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerEmployee(t, app, "jane@example.com")
	targetID, _ := registerEmployee(t, app, "bob@example.com")

	status, body := doRequest(t, app, http.MethodDelete, "/employees/"+targetID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Employee deleted successfully", body["message"])

	status, body = doRequest(t, app, http.MethodDelete, "/employees/"+targetID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Employee not found", body["message"])
}

func TestCreateEndpointRequiresAdmin(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerEmployee(t, app, "jane@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/employees", token, fiber.Map{
		"firstName": "New", "lastName": "Hire",
		"email": "new@example.com", "password": "secret1",
		"role": "employee", "department": "Sales",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Only admins can create employees", body["message"])
}

func TestCreateEndpointAsAdmin(t *testing.T) {
	app, repo := newTestApp(t)
	_, token := seedAdmin(t, app, repo, "admin@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/employees", token, fiber.Map{
		"firstName": "New", "lastName": "Hire",
		"email": "new@example.com", "password": "secret1",
		"role": "employee", "department": "Sales",
	})
	require.Equal(t, http.StatusCreated, status)

	employee := body["employee"].(map[string]any)
	assert.Equal(t, "new@example.com", employee["email"])
	assert.Equal(t, "Sales", employee["department"])
	assert.NotContains(t, employee, "password")
	assert.NotContains(t, employee, "passwordHash")
}

func TestCreateEndpointMissingFields(t *testing.T) {
	app, repo := newTestApp(t)
	_, token := seedAdmin(t, app, repo, "admin@example.com")

	status, body := doRequest(t, app, http.MethodPost, "/employees", token, fiber.Map{
		"firstName": "New", "email": "new@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "All fields are required", body["message"])
}

func TestGetEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	_, token := registerEmployee(t, app, "jane@example.com")
	targetID, _ := registerEmployee(t, app, fmt.Sprintf("bob%d@example.com", time.Now().UnixNano()))

	status, body := doRequest(t, app, http.MethodGet, "/employees/"+targetID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, targetID, body["id"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")

	status, _ = doRequest(t, app, http.MethodGet, "/employees/missing-id", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
