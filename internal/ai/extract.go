package ai

import (
	"encoding/json"
	"strings"

	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/regex"
)

const previewLen = 120

// ExtractJSON locates the span from the first '{' to the last '}' in raw provider
// text and decodes it. When the span does not parse, it is retried once after
// SanitizeJSON.
func ExtractJSON(raw string) (map[string]any, error) {
	span := regex.JSONObjectSpan.FindString(raw)
	if span == "" {
		return nil, errors.ErrNoJSONFound.WithContext("preview", preview(raw))
	}

	obj, err := decodeObject(span)
	if err == nil {
		return obj, nil
	}

	sanitized := SanitizeJSON(span)
	if sanitized != span {
		if obj, retryErr := decodeObject(sanitized); retryErr == nil {
			return obj, nil
		}
	}

	return nil, errors.ErrInvalidJSON.
		WithError(err).
		WithContext("preview", preview(span))
}

// SanitizeJSON cleans malformed JSON that LLMs sometimes generate,
// such as unescaped newlines within String Literals.
func SanitizeJSON(s string) string {
	return regex.JSONString.ReplaceAllStringFunc(s, func(m string) string {
		m = strings.ReplaceAll(m, "\r", "\\r")
		m = strings.ReplaceAll(m, "\n", "\\n")
		return strings.ReplaceAll(m, "\t", "\\t")
	})
}

func decodeObject(s string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func preview(s string) string {
	return TruncateRunes(s, previewLen)
}
