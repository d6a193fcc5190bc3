package errors

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestErrorConstructors(t *testing.T) {
	cause := errors.New("underlying failure")

	tests := []struct {
		name         string
		err          *AppError
		expectedType ErrorType
		expectedCode int
	}{
		{"Validation", NewValidationError("bad input", cause), ErrorTypeValidation, http.StatusBadRequest},
		{"Decode", NewDecodeError("before", cause), ErrorTypeDecode, http.StatusBadRequest},
		{"Network", NewNetworkError("fetch failed", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"Analysis", NewAnalysisError("segment", "after", cause), ErrorTypeAnalysis, http.StatusUnprocessableEntity},
		{"Timeout", NewTimeoutError("too slow", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"NotFound", NewNotFoundError("missing", nil), ErrorTypeNotFound, http.StatusNotFound},
		{"Internal", NewInternalError("boom", cause), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.expectedType {
				t.Errorf("Type = %s, expected %s", tt.err.Type, tt.expectedType)
			}
			if tt.err.StatusCode != tt.expectedCode {
				t.Errorf("StatusCode = %d, expected %d", tt.err.StatusCode, tt.expectedCode)
			}
			if !IsType(tt.err, tt.expectedType) {
				t.Errorf("IsType should match %s", tt.expectedType)
			}
			if GetStatusCode(tt.err) != tt.expectedCode {
				t.Errorf("GetStatusCode = %d, expected %d", GetStatusCode(tt.err), tt.expectedCode)
			}
		})
	}
}

func TestDecodeError_NamesSide(t *testing.T) {
	err := NewDecodeError("after", errors.New("bad magic bytes"))
	if err.Details != "after" {
		t.Errorf("Details = %q, expected the failed side", err.Details)
	}
	if !strings.Contains(err.Message, "after") {
		t.Errorf("Message should name the failed side: %q", err.Message)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewInternalError("wrapper", cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := NewNetworkError("fetch failed", errors.New("dial tcp refused"))
	if !strings.Contains(withCause.Error(), "dial tcp refused") {
		t.Errorf("Error string should include the cause: %q", withCause.Error())
	}

	withoutCause := NewValidationError("bad input", nil)
	if strings.Contains(withoutCause.Error(), "caused by") {
		t.Errorf("Error string without cause should omit the cause clause: %q", withoutCause.Error())
	}
}

func TestIsType_PlainError(t *testing.T) {
	if IsType(errors.New("plain"), ErrorTypeInternal) {
		t.Error("Plain errors should not match any AppError type")
	}
	if GetStatusCode(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("Plain errors should default to 500")
	}
}
