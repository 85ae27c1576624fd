package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/config"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	employees  repository.EmployeeRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, employees repository.EmployeeRepository) *AuthService {
	return &AuthService{
		employees:  employees,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a self-service account. Role is always forced to
// employee; admin accounts are never minted through this path.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*domain.Employee, string, time.Time, error) {
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("Email and password are required")
	}
	if !domain.ValidEmail(email) {
		return nil, "", time.Time{}, apperrors.NewValidationError("Invalid email format")
	}
	if !domain.ValidPassword(password) {
		return nil, "", time.Time{}, apperrors.NewValidationError("Password must be at least 6 characters long")
	}

	if _, err := s.employees.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("Employee already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	employee := &domain.Employee{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		Department:   domain.DefaultDepartment,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			// Lost a concurrent registration race on the unique index.
			return nil, "", time.Time{}, apperrors.NewConflict("Employee already exists")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.Issue(employee.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return employee, token, exp, nil
}

// Login authenticates an employee. Unknown email and wrong password produce
// the same response to avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Employee, string, time.Time, error) {
	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, invalidCredentials()
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if !auth.CheckPassword(password, employee.PasswordHash) {
		return nil, "", time.Time{}, invalidCredentials()
	}

	token, exp, err := s.tokenMgr.Issue(employee.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return employee, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func invalidCredentials() error {
	return apperrors.NewDomainError("INVALID_CREDENTIALS", "Invalid credentials", http.StatusBadRequest, nil)
}
