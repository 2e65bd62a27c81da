package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Sign-in errors
	ErrAuthFailed  = fmt.Errorf("authentication failed")
	ErrTimeout     = fmt.Errorf("operation timed out")
	ErrCancelled   = fmt.Errorf("operation cancelled")
	ErrRateLimited = fmt.Errorf("too many sign-in attempts")

	// Persistence errors
	ErrNotFound = fmt.Errorf("record not found")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
