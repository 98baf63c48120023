package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrInvalidToken  = fmt.Errorf("invalid or expired token")
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrIdentityError = fmt.Errorf("identity provider error")

	// Request outcomes, mapped onto HTTP status codes at the transport boundary
	ErrValidation   = fmt.Errorf("validation failed")
	ErrUnauthorized = fmt.Errorf("authentication required")
	ErrForbidden    = fmt.Errorf("access forbidden")
	ErrNotFound     = fmt.Errorf("not found")
	ErrConflict     = fmt.Errorf("conflict")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
