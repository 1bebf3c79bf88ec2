package tenant

import "errors"

var (
	// ErrMissingTenant is returned when no resolver produced a tenant identifier.
	ErrMissingTenant = errors.New("tenant identifier is missing")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrTenantMismatch is returned when the resolved tenant differs from the verified claim.
	ErrTenantMismatch = errors.New("tenant does not match token claim")
)
