package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/cache"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/events"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util"
)

// ListQuery captures directory browse parameters. Page is 1-based.
type ListQuery struct {
	Search     string
	Department string
	Page       int
	Limit      int
}

// ListResult is one page of the directory.
type ListResult struct {
	Employees []domain.Employee
	Total     int
	Page      int
	Pages     int
}

// CreateEmployeeInput holds the admin-creation payload. All fields are
// required by the API contract.
type CreateEmployeeInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Role       string
	Department string
}

// EmployeePatch is a partial update: nil slots leave the attribute unchanged.
type EmployeePatch struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Password   *string
	Role       *string
	Department *string
}

// EmployeeService implements directory reads and role-gated mutations.
type EmployeeService struct {
	employees  repository.EmployeeRepository
	cache      *cache.EmployeeCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewEmployeeService builds the service. Cache and dispatcher may be nil.
func NewEmployeeService(employees repository.EmployeeRepository, employeeCache *cache.EmployeeCache, dispatcher events.Dispatcher, logger *zap.Logger, bcryptCost int) *EmployeeService {
	return &EmployeeService{
		employees:  employees,
		cache:      employeeCache,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Get loads a single employee, serving from cache when warm.
func (s *EmployeeService) Get(ctx context.Context, id string) (*domain.Employee, error) {
	if employee, ok := s.cache.Get(ctx, id); ok {
		return employee, nil
	}

	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Employee")
		}
		return nil, apperrors.MapError(err)
	}

	s.cache.Set(ctx, employee)
	return employee, nil
}

// List returns one page of the directory matching the query.
func (s *EmployeeService) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	page := q.Page
	if page <= 0 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	items, total, err := s.employees.List(ctx, repository.EmployeeFilter{
		Search:     q.Search,
		Department: q.Department,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	pages := (total + limit - 1) / limit
	return &ListResult{Employees: items, Total: total, Page: page, Pages: pages}, nil
}

// Create adds a directory record. Only callers whose freshly loaded record
// holds the admin role may create employees.
func (s *EmployeeService) Create(ctx context.Context, caller *domain.Employee, input CreateEmployeeInput) (*domain.Employee, error) {
	if err := auth.CanCreateEmployee(caller); err != nil {
		return nil, err
	}

	if input.FirstName == "" || input.LastName == "" || input.Email == "" ||
		input.Password == "" || input.Role == "" || input.Department == "" {
		return nil, apperrors.NewValidationError("All fields are required")
	}
	if !domain.ValidEmail(input.Email) {
		return nil, apperrors.NewValidationError("Invalid email format")
	}
	if !domain.ValidPassword(input.Password) {
		return nil, apperrors.NewValidationError("Password must be at least 6 characters long")
	}

	if _, err := s.employees.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("Email already registered")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	employee := &domain.Employee{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Role:         domain.NormalizeRole(input.Role),
		Department:   input.Department,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperrors.NewConflict("Email already registered")
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventEmployeeCreated, employee)
	return employee, nil
}

// Update applies a partial update to another employee's record. Self-update
// is rejected before any store access.
func (s *EmployeeService) Update(ctx context.Context, callerID, targetID string, patch EmployeePatch) (*domain.Employee, error) {
	if err := auth.CanUpdateEmployee(callerID, targetID); err != nil {
		return nil, err
	}

	employee, err := s.employees.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Employee")
		}
		return nil, apperrors.MapError(err)
	}

	if patch.FirstName != nil {
		employee.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		employee.LastName = *patch.LastName
	}
	if patch.Email != nil {
		if !domain.ValidEmail(*patch.Email) {
			return nil, apperrors.NewValidationError("Invalid email format")
		}
		employee.Email = strings.ToLower(*patch.Email)
	}
	if patch.Password != nil {
		if !domain.ValidPassword(*patch.Password) {
			return nil, apperrors.NewValidationError("Password must be at least 6 characters long")
		}
		hash, err := auth.HashPassword(*patch.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		employee.PasswordHash = hash
	}
	if patch.Role != nil {
		employee.Role = domain.NormalizeRole(*patch.Role)
	}
	if patch.Department != nil {
		employee.Department = *patch.Department
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			return nil, apperrors.NewConflict("Email already registered")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("Employee")
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.cache.Invalidate(ctx, employee.ID)
	s.publish(ctx, events.EventEmployeeUpdated, employee)
	return employee, nil
}

// Delete removes another employee's record. Self-delete is rejected.
func (s *EmployeeService) Delete(ctx context.Context, callerID, targetID string) error {
	if err := auth.CanDeleteEmployee(callerID, targetID); err != nil {
		return err
	}

	if err := s.employees.Delete(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Employee")
		}
		return apperrors.MapError(err)
	}

	s.cache.Invalidate(ctx, targetID)
	s.publish(ctx, events.EventEmployeeDeleted, &domain.Employee{ID: targetID})
	return nil
}

func (s *EmployeeService) publish(ctx context.Context, eventType events.EventType, employee *domain.Employee) {
	if s.dispatcher == nil {
		return
	}
	payload := map[string]any{}
	if employee.Email != "" {
		payload["email"] = employee.Email
	}
	if employee.Department != "" {
		payload["department"] = employee.Department
	}
	if err := s.dispatcher.Publish(ctx, events.Event{
		Type:       eventType,
		EmployeeID: employee.ID,
		Payload:    payload,
	}); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}
