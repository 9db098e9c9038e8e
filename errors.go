package wavetile

import (
	"errors"
	"fmt"
)

// ErrorKind represents categories of errors
type ErrorKind int

const (
	// Configuration/specialization constraint failures
	ErrKindConfig ErrorKind = iota
	// Operand shape or layout violations
	ErrKindShape
	// Memory errors
	ErrKindMemory
	// Launch/execution errors
	ErrKindLaunch
)

// KernelError represents a structured error with context. Everything this
// package can reject is rejected before a kernel launches; once a block is
// running there are no recoverable conditions.
type KernelError struct {
	Kind    ErrorKind
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *KernelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wavetile %s error in %s: %s (caused by: %v)",
			e.Kind.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("wavetile %s error in %s: %s",
		e.Kind.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *KernelError) Unwrap() error {
	return e.Err
}

// String returns the error kind as a string
func (k ErrorKind) String() string {
	switch k {
	case ErrKindConfig:
		return "Config"
	case ErrKindShape:
		return "Shape"
	case ErrKindMemory:
		return "Memory"
	case ErrKindLaunch:
		return "Launch"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewConfigError creates a specialization-constraint error
func NewConfigError(op string, format string, args ...interface{}) error {
	return &KernelError{
		Kind:    ErrKindConfig,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewShapeError creates an operand shape/layout error
func NewShapeError(op string, format string, args ...interface{}) error {
	return &KernelError{
		Kind:    ErrKindShape,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &KernelError{
		Kind:    ErrKindMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewLaunchError creates a launch error
func NewLaunchError(op string, message string, err error) error {
	return &KernelError{
		Kind:    ErrKindLaunch,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewMemoryError("Malloc", "size must be positive", nil)

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)
)

// IsConfigError checks if an error is a specialization-constraint error
func IsConfigError(err error) bool {
	var e *KernelError
	if errors.As(err, &e) {
		return e.Kind == ErrKindConfig
	}
	return false
}

// IsShapeError checks if an error is an operand shape/layout error
func IsShapeError(err error) bool {
	var e *KernelError
	if errors.As(err, &e) {
		return e.Kind == ErrKindShape
	}
	return false
}
