package contract

import "errors"

var (
	// ErrCapability marks an external capability call that failed or timed
	// out. The router converts it to a user-facing apology.
	ErrCapability = errors.New("capability call failed")

	// Capability-internal causes, wrapped into ErrCapability at the adapter
	// boundary.
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")

	// ErrValidation and ErrState indicate a contract violation inside the
	// router's own state machine. They are never converted to apologies.
	ErrValidation = errors.New("validation failed")
	ErrState      = errors.New("invalid pipeline state")
)
