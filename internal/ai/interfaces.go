package ai

import (
	"context"

	"github.com/thomas-vilte/contextclue/internal/models"
)

// InferenceProvider is the narrow capability the orchestrator needs from a model vendor:
// send one prompt, get the raw text back.
type InferenceProvider interface {
	// Invoke performs a single call and returns the provider's text output.
	// Usage may be nil when the vendor does not report token counts.
	Invoke(ctx context.Context, prompt string) (string, *models.TokenUsage, error)

	// GetModelName returns the name of the current model (e.g.: "amazon.nova-lite-v1:0")
	GetModelName() string

	// GetProviderName returns the name of the provider (e.g.: "bedrock", "gemini")
	GetProviderName() string
}
