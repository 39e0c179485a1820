package ai

import (
	"context"
	stdErrors "errors"

	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/regex"
)

// ClassifyProviderError maps a vendor SDK error onto the AI error sentinels.
// Errors that already are *errors.AppError pass through unchanged.
func ClassifyProviderError(err error, provider string) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stdErrors.As(err, &appErr) {
		return err
	}

	msg := err.Error()
	switch {
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		return errors.ErrProviderCall.
			WithError(err).
			WithContext("provider", provider).
			WithContext("reason", "call abandoned before a response arrived")
	case regex.QuotaKeywords.MatchString(msg):
		return errors.ErrQuotaExceeded.WithError(err).WithContext("provider", provider)
	case regex.AuthKeywords.MatchString(msg):
		return errors.ErrProviderAuth.WithError(err).WithContext("provider", provider)
	default:
		return errors.ErrProviderCall.WithError(err).WithContext("provider", provider)
	}
}
