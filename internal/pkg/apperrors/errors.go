package apperrors

import "errors"

// Common errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
)

// Identity errors
var (
	ErrIdentityMissing = errors.New("student identity missing from session")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseFull          = errors.New("course is full")
	ErrEnrollmentUnderflow = errors.New("course enrolled count cannot go below zero")
)

// Registration errors
var (
	ErrAlreadyRegistered     = errors.New("student already registered for course")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrInvalidRegistrationID = errors.New("invalid registration ID")
)

// NewCustomError creates a CustomError wrapping err with a human-readable message
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
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
