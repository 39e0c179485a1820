package bedrock

import (
	"context"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/errors"
)

// ProviderFactory builds Bedrock providers from configuration.
type ProviderFactory struct{}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

func (f *ProviderFactory) Create(_ context.Context, cfg *config.Config) (ai.InferenceProvider, error) {
	if err := f.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	p, err := New(Config{
		Region:          cfg.Provider.Region,
		Model:           cfg.Provider.Model,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		SessionToken:    cfg.AWS.SessionToken,
		MaxTokens:       cfg.Provider.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *ProviderFactory) ValidateConfig(cfg *config.Config) error {
	if cfg.AWS.AccessKeyID == "" || cfg.AWS.SecretAccessKey == "" {
		return errors.ErrCredentialsMissing.WithContext("provider", ProviderName)
	}
	return nil
}

func (f *ProviderFactory) Name() string {
	return ProviderName
}
