package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		status    int
	}{
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypeConflict, http.StatusConflict},
		{ErrorTypeUnauthorized, http.StatusUnauthorized},
		{ErrorTypeForbidden, http.StatusForbidden},
		{ErrorTypeSession, http.StatusBadGateway},
		{ErrorTypeTransfer, http.StatusBadGateway},
		{ErrorTypeProcessing, http.StatusBadGateway},
		{ErrorTypeDeletion, http.StatusBadGateway},
		{ErrorTypeTimeout, http.StatusGatewayTimeout},
		{ErrorTypeInternal, http.StatusInternalServerError},
		{ErrorTypeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := ErrorTypeToHTTPStatus(tt.errorType); got != tt.status {
			t.Errorf("ErrorTypeToHTTPStatus(%s) = %d, want %d", tt.errorType, got, tt.status)
		}
	}
}

func TestIsTypeThroughWrapping(t *testing.T) {
	base := NewError(context.Background(), LayerDomain, ErrorTypeTimeout, "still processing", nil,
		"4c2e8b71-d3f6-490a-85c4-7a1d09e63b28")
	wrapped := fmt.Errorf("await: %w", base)

	if !IsType(wrapped, ErrorTypeTimeout) {
		t.Fatal("IsType lost the type through wrapping")
	}
	if IsType(wrapped, ErrorTypeProcessing) {
		t.Fatal("IsType matched the wrong type")
	}
	if IsType(errors.New("plain"), ErrorTypeTimeout) {
		t.Fatal("IsType matched a non-platform error")
	}
}

func TestTypeOf(t *testing.T) {
	err := NewError(context.Background(), LayerDomain, ErrorTypeSession, "no session", nil,
		"e81d4a6f-09c2-47b5-8d3e-1f65a0c92b84")
	if got := TypeOf(err); got != ErrorTypeSession {
		t.Fatalf("TypeOf = %s, want %s", got, ErrorTypeSession)
	}
	if got := TypeOf(errors.New("plain")); got != ErrorTypeInternal {
		t.Fatalf("TypeOf(plain) = %s, want %s", got, ErrorTypeInternal)
	}
}

func TestErrorFormatting(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewError(context.Background(), LayerDomain, ErrorTypeTransfer, "video transfer failed", inner,
		"0a73c5e2-418d-46fb-92a6-d5e08b1c74f3")

	msg := err.Error()
	for _, fragment := range []string{"domain", "TRANSFER", "video transfer failed", "connection reset"} {
		if !strings.Contains(msg, fragment) {
			t.Errorf("error string %q missing %q", msg, fragment)
		}
	}
	if !errors.Is(err, inner) {
		t.Fatal("Unwrap lost the inner error")
	}
}

func TestNewErrorWithContextFields(t *testing.T) {
	err := NewErrorWithContext(context.Background(), LayerDomain, ErrorTypeTimeout, "budget exhausted", nil,
		"4c2e8b71-d3f6-490a-85c4-7a1d09e63b28", map[string]any{"job_id": "abc", "attempts": 30})
	if err.Context["job_id"] != "abc" {
		t.Fatalf("context fields not carried: %+v", err.Context)
	}
}
