package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Simulation Errors
	ErrUnknownStrategy = errors.New("unknown strategy name")
	ErrEmptySeries     = errors.New("historical series is empty")

	// Tracker Errors
	ErrPositionNotFound = errors.New("position is not tracked")

	// Market Data Errors
	ErrProviderUnavailable = errors.New("historical data provider is unavailable")
	ErrConnectionFailed    = errors.New("failed to connect to the data provider")
	ErrRateLimited         = errors.New("API rate limit exceeded")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
)
