package domain

import (
	"errors"
	"fmt"
)

type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
	StatusPermissionDenied
	StatusNotFound
)

// Error message constants for requisition domain.
const (
	ErrMsgOrderLocked       = "Order is already locked"
	ErrMsgOrderNotPending   = "Only pending orders can be cancelled"
	ErrMsgLineOutOfStock    = "Line is out of stock"
	ErrMsgLineIndexRange    = "Line index out of range"
	ErrMsgNotOrderOwner     = "Order belongs to another user"
	ErrMsgProductIDRequired = "Product ID is required"
	ErrMsgProductNotFound   = "Product does not exist"
	ErrMsgProductInactive   = "Product is not available"
	ErrMsgInvalidMode       = "Unknown pricing mode"
	ErrMsgCartEmpty         = "Cart is empty"
	ErrMsgUnknownAction     = "Unknown action"
	ErrMsgDeltaZero         = "Delta must not be zero"
	ErrMsgAdminOnly         = "Administrator role required"
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	case StatusPermissionDenied:
		return "PERMISSION_DENIED"
	case StatusNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}

// CommandError отказ бизнес-логики с категорией
type CommandError struct {
	Code    StatusCode
	Message string
}

func (e *CommandError) Error() string {
	return e.Message
}

func NewInvalidArgument(message string) *CommandError {
	return &CommandError{Code: StatusInvalidArgument, Message: message}
}

func NewFailedPrecondition(message string) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Message: message}
}

func NewFailedPreconditionf(format string, args ...interface{}) *CommandError {
	return &CommandError{Code: StatusFailedPrecondition, Message: fmt.Sprintf(format, args...)}
}

func NewPermissionDenied(message string) *CommandError {
	return &CommandError{Code: StatusPermissionDenied, Message: message}
}

func NewNotFound(message string) *CommandError {
	return &CommandError{Code: StatusNotFound, Message: message}
}

// CodeOf категория ошибки; ok=false если это не CommandError
func CodeOf(err error) (StatusCode, bool) {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}
