package relationaldb

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Configuration errors
	ErrInvalidDriver          = errors.New("invalid journal driver")
	ErrMissingHost            = errors.New("database host is required")
	ErrMissingDatabase        = errors.New("database name is required")
	ErrMissingUsername        = errors.New("database username is required")
	ErrInvalidPort            = errors.New("invalid database port")
	ErrInvalidMaxOpenConns    = errors.New("max open connections must be >= 0")
	ErrInvalidMaxIdleConns    = errors.New("max idle connections must be >= 0")
	ErrMaxIdleExceedsMaxOpen  = errors.New("max idle connections cannot exceed max open connections")
	ErrInvalidTimeout         = errors.New("timeout must be positive")
	ErrInvalidConnMaxLifetime = errors.New("connection max lifetime must be >= 0")
	ErrInvalidConnMaxIdleTime = errors.New("connection max idle time must be >= 0")

	// Connection errors
	ErrDatabaseClosed = errors.New("database connection is closed")

	// Data errors
	ErrInvalidDataFormat = errors.New("invalid data format")

	// Query errors
	ErrInvalidLimit = errors.New("invalid query limit")
)

// ErrorType represents different categories of database errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeConfiguration
	ErrorTypeConnection
	ErrorTypeTransaction
	ErrorTypeData
	ErrorTypeQuery
	ErrorTypeSchema
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypeConnection:
		return "connection"
	case ErrorTypeTransaction:
		return "transaction"
	case ErrorTypeData:
		return "data"
	case ErrorTypeQuery:
		return "query"
	case ErrorTypeSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// DatabaseError provides detailed information about database errors
type DatabaseError struct {
	Type      ErrorType `json:"type"`
	Operation string    `json:"operation"`
	Message   string    `json:"message"`
	Cause     error     `json:"cause,omitempty"`
	Retryable bool      `json:"retryable"`
}

func (e *DatabaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *DatabaseError) IsRetryable() bool {
	return e.Retryable
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(errorType ErrorType, operation, message string, cause error) *DatabaseError {
	return &DatabaseError{
		Type:      errorType,
		Operation: operation,
		Message:   message,
		Cause:     cause,
		Retryable: isRetryableError(errorType, cause),
	}
}

func NewConfigurationError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeConfiguration, operation, message, cause)
}

func NewConnectionError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeConnection, operation, message, cause)
}

func NewTransactionError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeTransaction, operation, message, cause)
}

func NewDataError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeData, operation, message, cause)
}

func NewQueryError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeQuery, operation, message, cause)
}

func NewSchemaError(operation, message string, cause error) *DatabaseError {
	return NewDatabaseError(ErrorTypeSchema, operation, message, cause)
}

// isRetryableError determines if an error is retryable based on its type and cause
func isRetryableError(errorType ErrorType, cause error) bool {
	switch errorType {
	case ErrorTypeConnection:
		return true
	case ErrorTypeTransaction, ErrorTypeQuery:
		if cause == nil {
			return false
		}
		msg := strings.ToLower(cause.Error())
		for _, s := range []string{"deadlock", "timeout", "busy", "locked", "temporary"} {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IsRetryable reports whether err carries a retryable DatabaseError.
func IsRetryable(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr) && dbErr.Retryable
}
