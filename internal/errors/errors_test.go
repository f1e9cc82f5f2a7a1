package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestSheetError_Error(t *testing.T) {
	err := &SheetError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "character not found",
	}

	expected := "NOT_FOUND: character not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("id is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "id is required" {
		t.Errorf("Message = %q, want %q", err.Message, "id is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01HX")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != "01HX" {
		t.Errorf("Details[id] = %v, want %q", err.Details["id"], "01HX")
	}
}

func TestNewImageTooLarge(t *testing.T) {
	err := NewImageTooLarge(10, 25)

	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_bytes"] != int64(10) {
		t.Errorf("Details[max_bytes] = %v, want 10", err.Details["max_bytes"])
	}
	if err.Details["actual_bytes"] != int64(25) {
		t.Errorf("Details[actual_bytes] = %v, want 25", err.Details["actual_bytes"])
	}
}

func TestNewMalformedStore_Unwraps(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := NewMalformedStore("characters", cause)

	if err.Code != ErrMalformedStore {
		t.Errorf("Code = %q, want %q", err.Code, ErrMalformedStore)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected MalformedStore to unwrap to its cause")
	}
}

func TestNewStorage(t *testing.T) {
	err := NewStorage("write", io.ErrClosedPipe)

	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
	if err.Details["op"] != "write" {
		t.Errorf("Details[op] = %v, want write", err.Details["op"])
	}
	if !stderrors.Is(err, io.ErrClosedPipe) {
		t.Error("expected Storage error to unwrap to its cause")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("boom"))
	if err.Message != "boom" {
		t.Errorf("Message = %q, want %q", err.Message, "boom")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("x"), ErrNotFound, true},
		{"different code", NewNotFound("x"), ErrInvalidRequest, false},
		{"wrapped", fmt.Errorf("load: %w", NewMalformedStore("k", io.EOF)), ErrMalformedStore, true},
		{"plain error", fmt.Errorf("plain"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
