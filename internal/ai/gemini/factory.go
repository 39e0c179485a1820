package gemini

import (
	"context"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/errors"
)

// ProviderFactory builds Gemini providers from configuration.
type ProviderFactory struct{}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

func (f *ProviderFactory) Create(ctx context.Context, cfg *config.Config) (ai.InferenceProvider, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	p, err := New(ctx, Config{
		APIKey:    cfg.Gemini.APIKey,
		Model:     cfg.Provider.Model,
		MaxTokens: cfg.Provider.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *ProviderFactory) ValidateConfig(cfg *config.Config) error {
	if cfg.Gemini.APIKey == "" {
		return errors.ErrCredentialsMissing.
			WithContext("provider", ProviderName).
			WithSuggestion("Export GEMINI_API_KEY or set gemini.api_key")
	}
	return nil
}

func (f *ProviderFactory) Name() string {
	return ProviderName
}
