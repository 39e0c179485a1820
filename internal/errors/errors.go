package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeInput         ErrorType = "INPUT"
	TypeAI            ErrorType = "AI"
	TypeExtraction    ErrorType = "EXTRACTION"
	TypeValidation    ErrorType = "VALIDATION"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if reason, ok := e.Context["reason"].(string); ok && reason != "" {
			msg += fmt.Sprintf(" - %s", reason)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by type and message so derived copies
// (WithError, WithContext) still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Input errors
var (
	ErrInvalidRequest = NewAppError(TypeInput, "request body could not be parsed", nil).
		WithSuggestion(`Send a JSON object like {"codeName":"Header.tsx","codeContent":"..."}`)

	ErrCodeFileUnreadable = NewAppError(TypeInput, "code file could not be read", nil).
				WithSuggestion("Check the path passed to --code exists and is readable")
)

// Configuration errors
var (
	ErrCredentialsMissing = NewAppError(TypeConfiguration, "provider credentials are missing", nil).
				WithSuggestion("Export AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or set gemini.api_key")

	ErrProviderNotSupported = NewAppError(TypeConfiguration, "inference provider not supported", nil).
				WithSuggestion("Use one of: bedrock, gemini, fixture, none")

	ErrProviderAlreadyRegistered = NewAppError(TypeConfiguration, "inference provider already registered", nil)

	ErrConfigInvalid = NewAppError(TypeConfiguration, "configuration is invalid", nil).
				WithSuggestion("Run: contextclue config show")
)

// AI provider errors
var (
	ErrProviderCall = NewAppError(TypeAI, "inference provider call failed", nil).
			WithSuggestion("Check network access and provider credentials")

	ErrEmptyProviderOutput = NewAppError(TypeAI, "inference provider returned no text", nil)

	ErrQuotaExceeded = NewAppError(TypeAI, "provider quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and try again, or check your provider quota")

	ErrProviderAuth = NewAppError(TypeAI, "provider rejected the credentials", nil).
			WithSuggestion("Verify the configured API key or AWS credentials")

	ErrBudgetExceeded = NewAppError(TypeAI, "daily analysis budget exceeded", nil).
				WithSuggestion("Raise budget.daily_usd or wait until tomorrow")
)

// Extraction errors
var (
	ErrNoJSONFound = NewAppError(TypeExtraction, "no JSON object found in provider output", nil)

	ErrInvalidJSON = NewAppError(TypeExtraction, "provider output contains malformed JSON", nil)
)

// Validation errors
var (
	ErrSchemaMismatch = NewAppError(TypeValidation, "diagnosis does not match the result schema", nil)

	ErrConfidenceOutOfRange = NewAppError(TypeValidation, "confidence must be an integer between 1 and 100", nil)
)
