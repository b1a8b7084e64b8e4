package project

import (
	"errors"
	"fmt"
)

type ErrorType int

const (
	// ErrNoContent means no translatable content exists after all fallbacks.
	ErrNoContent ErrorType = iota
	// ErrWritePrecondition means a checkpoint was attempted with no content
	// or no scenes.
	ErrWritePrecondition
	ErrFileRead
	ErrFileWrite
	ErrParse
	ErrTranslation
	ErrConfig
	ErrUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrNoContent:
		return "NoContent"
	case ErrWritePrecondition:
		return "WritePrecondition"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrParse:
		return "Parse"
	case ErrTranslation:
		return "Translation"
	case ErrConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

// ProjectError is a typed error with an optional cause.
type ProjectError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func NewError(errorType ErrorType, message string) *ProjectError {
	return &ProjectError{
		Type:    errorType,
		Message: message,
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *ProjectError {
	return &ProjectError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

func (e *ProjectError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
}

func (e *ProjectError) Unwrap() error {
	return e.Cause
}

// IsErrorType reports whether err is a ProjectError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var projErr *ProjectError
	if errors.As(err, &projErr) {
		return projErr.Type == errorType
	}
	return false
}
