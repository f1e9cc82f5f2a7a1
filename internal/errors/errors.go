package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a charsheet error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrImageTooLarge  ErrorCode = "IMAGE_TOO_LARGE" // 413
	ErrMalformedStore ErrorCode = "MALFORMED_STORE" // 422
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrStorage        ErrorCode = "STORAGE"         // 503
)

// SheetError represents a structured error with code, status, and details.
type SheetError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *SheetError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *SheetError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SheetError {
	return &SheetError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a character cannot be found.
func NewNotFound(id string) *SheetError {
	return &SheetError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("character not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import or image file.
func NewFileNotFound(path string) *SheetError {
	return &SheetError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewConflict creates a 409 error, used when an import collides with existing ids.
func NewConflict(msg string) *SheetError {
	return &SheetError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewImageTooLarge creates a 413 error when an uploaded image exceeds the size limit.
func NewImageTooLarge(max, actual int64) *SheetError {
	return &SheetError{
		Code:    ErrImageTooLarge,
		Status:  413,
		Message: fmt.Sprintf("image exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewMalformedStore creates a 422 error when the persisted blob cannot be decoded.
// Nothing is recovered from a malformed blob.
func NewMalformedStore(key string, err error) *SheetError {
	return &SheetError{
		Code:    ErrMalformedStore,
		Status:  422,
		Message: fmt.Sprintf("stored characters under %q are malformed: %v", key, err),
		Details: map[string]any{"key": key},
		cause:   err,
	}
}

// NewStorage creates a 503 error for persistence substrate failures.
func NewStorage(op string, err error) *SheetError {
	return &SheetError{
		Code:    ErrStorage,
		Status:  503,
		Message: fmt.Sprintf("storage %s failed: %v", op, err),
		Details: map[string]any{"op": op},
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SheetError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SheetError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a SheetError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *SheetError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
