package auth

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUserNameOrEmailExists is returned when attempting to create a user with a username or email that already exists.
	ErrUserNameOrEmailExists = errors.New("user with username or email already exists")

	// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
	// Both cases share one error so the login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenExpired is returned when a bearer token was valid but its lifetime has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for malformed, forged or otherwise unverifiable bearer tokens.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrEmptySigningKey is returned when a token manager is created without a signing key.
	ErrEmptySigningKey = errors.New("token signing key is empty")

	// ErrNoRoleAssigned is returned when the user has no role at all.
	// It points to a missing administrative assignment, not to a policy decision.
	ErrNoRoleAssigned = errors.New("no role assigned")

	// ErrPermissionDenied is matched by every *PermissionDeniedError.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRoleNotFound is returned when a role ID does not exist.
	ErrRoleNotFound = errors.New("role not found")

	// ErrRoleNameExists is returned when creating a role whose machine name is taken.
	ErrRoleNameExists = errors.New("role with this name already exists")

	// ErrSystemRoleProtected is returned for any attempt to create, edit, re-grant or delete a system role.
	ErrSystemRoleProtected = errors.New("system roles cannot be modified")

	// ErrRoleInUse is returned when deleting a role that is still assigned to users.
	ErrRoleInUse = errors.New("role is assigned to users")

	// ErrUnknownPermission is returned when a grant references a permission ID that does not exist.
	ErrUnknownPermission = errors.New("unknown permission")
)

// PermissionDeniedError reports which permissions a request required.
// It never carries the permissions the user actually holds.
type PermissionDeniedError struct {
	Required []string
}

// Error implements the error interface.
func (e *PermissionDeniedError) Error() string {
	if len(e.Required) == 1 {
		return fmt.Sprintf("permission denied: %s", e.Required[0])
	}

	return fmt.Sprintf("permission denied: requires one of [%s]", strings.Join(e.Required, ", "))
}

// Is makes errors.Is(err, ErrPermissionDenied) succeed.
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}
