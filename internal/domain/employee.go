package domain

import (
	"regexp"
	"time"
)

// Role enumerates directory access levels.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// DefaultDepartment is assigned when no department is supplied.
const DefaultDepartment = "General"

// MinPasswordLength is the shortest accepted plaintext password.
const MinPasswordLength = 6

// Employee is the domain model for a directory member.
type Employee struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the employee holds the admin role.
func (e *Employee) IsAdmin() bool {
	return e.Role == RoleAdmin
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address matches the accepted local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidPassword reports whether the plaintext meets the minimum length.
func ValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

// NormalizeRole maps free-form input onto the role enum, defaulting to employee.
func NormalizeRole(raw string) Role {
	if Role(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleEmployee
}
