// Package diagnosis holds the diagnosis contract: the schema gate every
// provider answer must pass and the catalog of pre-authored fallbacks.
package diagnosis

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	domainErrors "github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/models"
)

const (
	MinConfidence = 1
	MaxConfidence = 100

	schemaURL = "diagnosis.schema.json"
)

//go:embed diagnosis.schema.json
var schemaSource string

var resultSchema = jsonschema.MustCompileString(schemaURL, schemaSource)

// Validate checks a candidate against the DiagnosisResult contract and returns
// the typed result. The candidate may be a decoded JSON object, raw JSON
// ([]byte, json.RawMessage or string) or an already typed DiagnosisResult.
// Numeric strings are accepted for confidence and coerced to int.
func Validate(candidate any) (models.DiagnosisResult, error) {
	switch c := candidate.(type) {
	case models.DiagnosisResult:
		return validateTyped(c)
	case *models.DiagnosisResult:
		if c == nil {
			return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.
				WithContext("reason", "candidate is nil")
		}
		return validateTyped(*c)
	case map[string]any:
		return validateObject(c)
	case json.RawMessage:
		return validateRaw([]byte(c))
	case []byte:
		return validateRaw(c)
	case string:
		return validateRaw([]byte(c))
	case nil:
		return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.
			WithContext("reason", "candidate is nil")
	default:
		return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.
			WithContext("reason", fmt.Sprintf("unsupported candidate type %T", candidate))
	}
}

func validateRaw(data []byte) (models.DiagnosisResult, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.
			WithContext("reason", "candidate is not valid JSON").
			WithError(err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.
			WithContext("reason", fmt.Sprintf("candidate is a JSON %T, not an object", decoded))
	}
	return validateObject(obj)
}

func validateObject(obj map[string]any) (models.DiagnosisResult, error) {
	if err := resultSchema.Validate(obj); err != nil {
		return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.WithError(err)
	}

	confidence, err := coerceConfidence(obj["confidence"])
	if err != nil {
		return models.DiagnosisResult{}, err
	}

	// the schema guarantees these are strings
	return models.DiagnosisResult{
		BugLocation: obj["bugLocation"].(string),
		Confidence:  confidence,
		Suggestion:  obj["suggestion"].(string),
		Fix:         obj["fix"].(string),
		Before:      obj["before"].(string),
		After:       obj["after"].(string),
	}, nil
}

func validateTyped(r models.DiagnosisResult) (models.DiagnosisResult, error) {
	if strings.TrimSpace(r.BugLocation) == "" || strings.TrimSpace(r.Suggestion) == "" || strings.TrimSpace(r.Fix) == "" {
		return models.DiagnosisResult{}, domainErrors.ErrSchemaMismatch.
			WithContext("reason", "bugLocation, suggestion and fix must not be empty")
	}
	if err := checkRange(r.Confidence); err != nil {
		return models.DiagnosisResult{}, err
	}
	return r, nil
}

func coerceConfidence(raw any) (int, error) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, domainErrors.ErrSchemaMismatch.WithContext("field", "confidence").WithError(err)
		}
		value = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, domainErrors.ErrSchemaMismatch.WithContext("field", "confidence").WithError(err)
		}
		value = f
	default:
		return 0, domainErrors.ErrSchemaMismatch.
			WithContext("field", "confidence").
			WithContext("reason", fmt.Sprintf("unexpected type %T", raw))
	}

	if value != math.Trunc(value) {
		return 0, domainErrors.ErrConfidenceOutOfRange.
			WithContext("value", value).
			WithContext("reason", "confidence must be a whole number")
	}
	if value < MinConfidence || value > MaxConfidence {
		return 0, domainErrors.ErrConfidenceOutOfRange.WithContext("value", value)
	}
	return int(value), nil
}

func checkRange(confidence int) error {
	if confidence < MinConfidence || confidence > MaxConfidence {
		return domainErrors.ErrConfidenceOutOfRange.WithContext("value", confidence)
	}
	return nil
}
