package auth

import (
	"github.com/spec-kit/employee-directory/internal/domain"
	apperrors "github.com/spec-kit/employee-directory/pkg/util"
)

// Pure authorization decisions, invoked after identity resolution. Directory
// reads carry no role restriction beyond authentication, which the bearer
// middleware already enforces.

// CanCreateEmployee requires the caller's current role to be admin. The role
// comes from a fresh store lookup, never from token claims.
func CanCreateEmployee(caller *domain.Employee) error {
	if caller == nil || !caller.IsAdmin() {
		return apperrors.NewForbidden("Only admins can create employees")
	}
	return nil
}

// CanUpdateEmployee forbids self-update; any other authenticated caller is
// allowed. The missing admin gate here is the documented policy of the API,
// inconsistent with creation gating.
func CanUpdateEmployee(callerID, targetID string) error {
	if callerID == targetID {
		return apperrors.NewValidationError("Cannot update your own account")
	}
	return nil
}

// CanDeleteEmployee forbids deleting one's own account.
func CanDeleteEmployee(callerID, targetID string) error {
	if callerID == targetID {
		return apperrors.NewValidationError("Cannot delete your own account")
	}
	return nil
}
