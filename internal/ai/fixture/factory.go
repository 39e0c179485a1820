package fixture

import (
	"context"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/config"
)

// ProviderFactory builds fixture providers from fixture.path.
type ProviderFactory struct{}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

func (f *ProviderFactory) Create(_ context.Context, cfg *config.Config) (ai.InferenceProvider, error) {
	p, err := New(cfg.Fixture.Path)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *ProviderFactory) ValidateConfig(cfg *config.Config) error {
	_, err := New(cfg.Fixture.Path)
	return err
}

func (f *ProviderFactory) Name() string {
	return ProviderName
}
