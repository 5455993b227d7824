package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUNIAlreadyExists   = errors.New("UNI already exists")
)

// Ledger errors. These are the recoverable commit/removal failures of the
// assignment ledger; a batch match run treats them as per-student events,
// never as run failures.
var (
	ErrCapacityExceeded   = errors.New("course has no remaining vacancies")
	ErrAlreadyAssigned    = errors.New("student already holds an active assignment")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// Snapshot errors
var (
	// ErrInconsistentSnapshot marks a malformed input record (preference
	// referencing an unknown course, duplicate ranks for one student)
	// encountered while building match candidates.
	ErrInconsistentSnapshot = errors.New("inconsistent snapshot")
	// ErrSnapshotUnavailable is fatal to a match run: the preference store
	// or catalog could not be read at all.
	ErrSnapshotUnavailable = errors.New("snapshot unavailable")
)

// Student errors
var (
	ErrProfileNotFound     = errors.New("student profile not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrPreferenceNotFound  = errors.New("preference not found")
	ErrDuplicatePreference = errors.New("student already applied to this course")
	ErrDuplicateRank       = errors.New("rank already used by another preference")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseAlreadyExists = errors.New("course with this code already exists")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
