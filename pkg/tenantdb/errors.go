package tenantdb

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/lmskit/pkg/tenant"
)

var (
	// ErrMissingTenant is returned when a connection is requested without a tenant id.
	ErrMissingTenant = tenant.ErrMissingTenant

	// ErrUnknownTenant is returned in strict mode for tenants absent from the database table.
	ErrUnknownTenant = errors.New("tenant is not configured")

	// ErrConnectionTimeout is returned when the handshake did not finish before the hard deadline.
	ErrConnectionTimeout = errors.New("tenant connection handshake timed out")

	// ErrConnectionNotReady is returned when the handshake finished but the handle is not connected.
	ErrConnectionNotReady = errors.New("tenant connection is not ready")

	// ErrConnection is returned when the transport reported a definite failure.
	ErrConnection = errors.New("tenant connection failed")

	// ErrSchemaAttach matches every *SchemaAttachError.
	ErrSchemaAttach = errors.New("failed to attach schema")

	// ErrEntityUnavailable is returned for entity types not attached to a connection.
	ErrEntityUnavailable = errors.New("entity type unavailable")

	// ErrRegistryClosed is returned by a registry after CloseAll.
	ErrRegistryClosed = errors.New("connection registry is closed")

	// ErrHealthcheckFailed is returned by Registry.Healthcheck when a cached handle does not answer.
	ErrHealthcheckFailed = errors.New("tenant connection healthcheck failed")

	// ErrInvalidBaseURL is returned when the shared endpoint cannot be parsed.
	ErrInvalidBaseURL = errors.New("invalid database base url")
)

// SchemaAttachError reports one schema that could not be attached to a connection.
type SchemaAttachError struct {
	Entity   string
	TenantID string
	Err      error
}

func (e *SchemaAttachError) Error() string {
	return fmt.Sprintf("attach schema %s for tenant %s: %v", e.Entity, e.TenantID, e.Err)
}

func (e *SchemaAttachError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSchemaAttach) match.
func (e *SchemaAttachError) Is(target error) bool { return target == ErrSchemaAttach }

// IsConnectionError reports whether err belongs to the retryable connection family.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionTimeout) ||
		errors.Is(err, ErrConnectionNotReady) ||
		errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrRegistryClosed)
}

// ErrorReason classifies a connection error for clients: "timeout",
// "not_ready" or "error". It returns "" for errors outside the family.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrConnectionTimeout):
		return "timeout"
	case errors.Is(err, ErrConnectionNotReady):
		return "not_ready"
	case IsConnectionError(err):
		return "error"
	default:
		return ""
	}
}
