package dto

import (
	"time"

	"github.com/spec-kit/employee-directory/internal/domain"
)

// EmployeeResponse is the sanitized projection of an employee. It carries no
// password hash field at all, so stripping cannot be forgotten at call sites.
type EmployeeResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewEmployeeResponse projects a domain record.
func NewEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Email:      e.Email,
		Role:       string(e.Role),
		Department: e.Department,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

// NewEmployeeResponses projects a slice of domain records.
func NewEmployeeResponses(employees []domain.Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		resp = append(resp, NewEmployeeResponse(&employees[i]))
	}
	return resp
}

// CreateEmployeeRequest payload for admin-initiated creation.
type CreateEmployeeRequest struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// UpdateEmployeeRequest is a partial update: absent fields stay unchanged.
type UpdateEmployeeRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
}

// ListEmployeesResponse is one page of the directory.
type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
	Total     int                `json:"total"`
	Page      int                `json:"page"`
	Pages     int                `json:"pages"`
}
