package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util"
)

const principalKey = "auth_principal"

// Middleware validates bearer tokens and loads the calling employee. The
// record is re-fetched on every request so role changes and deletions take
// effect before the token's natural expiry.
type Middleware struct {
	tokens    *TokenManager
	employees repository.EmployeeRepository
	logger    *zap.Logger
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, employees repository.EmployeeRepository, logger *zap.Logger) *Middleware {
	return &Middleware{tokens: tokens, employees: employees, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	employeeID, err := m.tokens.Verify(parts[1])
	if err != nil {
		m.logger.Debug("token rejected", zap.Error(err))
		return apperrors.NewUnauthorized("invalid token")
	}

	employee, err := m.employees.GetByID(c.Context(), employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Valid token for an account that no longer exists.
			return apperrors.NewDomainError("EMPLOYEE_NOT_FOUND", "Employee Not Found", http.StatusBadRequest, nil)
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, employee)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated employee.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Employee, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Employee)
	return principal, ok
}
