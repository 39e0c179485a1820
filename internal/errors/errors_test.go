package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestAppError_WithError(t *testing.T) {
	baseErr := errors.New("connection reset by peer")
	appErr := ErrProviderCall.WithError(baseErr)

	if appErr.Err != baseErr {
		t.Errorf("Expected underlying error to be %v, got %v", baseErr, appErr.Err)
	}

	if appErr.Type != TypeAI {
		t.Errorf("Expected type %s, got %s", TypeAI, appErr.Type)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appErr := ErrInvalidJSON.WithContext("preview", "{broken").WithContext("reason", "unexpected EOF")

	if appErr.Context["preview"] != "{broken" {
		t.Errorf("Expected preview context '{broken', got %v", appErr.Context["preview"])
	}

	if appErr.Context["reason"] != "unexpected EOF" {
		t.Errorf("Expected reason context 'unexpected EOF', got %v", appErr.Context["reason"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name: "Simple error without underlying error",
			err:  ErrNoJSONFound,
			contains: []string{
				"EXTRACTION",
				"no JSON object found in provider output",
			},
		},
		{
			name: "Error with underlying error",
			err:  ErrProviderCall.WithError(errors.New("dial tcp: i/o timeout")),
			contains: []string{
				"AI",
				"inference provider call failed",
				"dial tcp: i/o timeout",
			},
		},
		{
			name: "Error with reason context",
			err: ErrSchemaMismatch.WithError(errors.New("missing properties: 'confidence'")).
				WithContext("reason", "required field absent"),
			contains: []string{
				"VALIDATION",
				"diagnosis does not match the result schema",
				"missing properties",
				"required field absent",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errMsg, substr) {
					t.Errorf("Expected error message to contain %q, got: %s", substr, errMsg)
				}
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := ErrProviderCall.WithError(baseErr)

	unwrapped := appErr.Unwrap()
	if unwrapped != baseErr {
		t.Errorf("Expected unwrapped error to be %v, got %v", baseErr, unwrapped)
	}

	if !errors.Is(appErr, baseErr) {
		t.Error("errors.Is should work with AppError")
	}
}

func TestAppError_IsSentinel(t *testing.T) {
	derived := ErrConfidenceOutOfRange.WithContext("value", 150).WithError(errors.New("150 > 100"))

	if !errors.Is(derived, ErrConfidenceOutOfRange) {
		t.Error("derived error should match its sentinel")
	}
	if errors.Is(derived, ErrSchemaMismatch) {
		t.Error("derived error should not match a different sentinel")
	}

	var appErr *AppError
	if !errors.As(derived, &appErr) || appErr.Type != TypeValidation {
		t.Errorf("errors.As should expose the validation AppError, got %v", appErr)
	}
}

func TestAppError_ChainedContext(t *testing.T) {
	appErr := ErrProviderCall.
		WithError(errors.New("throttled")).
		WithContext("provider", "bedrock").
		WithContext("model", "amazon.nova-lite-v1:0")

	if appErr.Context["provider"] != "bedrock" {
		t.Errorf("Expected provider context, got %v", appErr.Context["provider"])
	}

	if appErr.Context["model"] != "amazon.nova-lite-v1:0" {
		t.Errorf("Expected model context, got %v", appErr.Context["model"])
	}

	// Ensure we didn't modify the original error
	if ErrProviderCall.Context != nil {
		t.Error("Original error should not have context")
	}
}
