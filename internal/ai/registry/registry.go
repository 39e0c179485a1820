// Package registry maps provider names from configuration to the factories
// that build them.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/ai/bedrock"
	"github.com/thomas-vilte/contextclue/internal/ai/fixture"
	"github.com/thomas-vilte/contextclue/internal/ai/gemini"
	"github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/logger"
)

// ProviderFactory defines how a provider is built from configuration.
type ProviderFactory interface {
	// Create builds a ready provider.
	Create(ctx context.Context, cfg *config.Config) (ai.InferenceProvider, error)

	// ValidateConfig reports whether cfg is enough to build the provider.
	ValidateConfig(cfg *config.Config) error

	Name() string
}

// ProviderRegistry holds the known provider factories.
type ProviderRegistry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		factories: make(map[string]ProviderFactory),
	}
}

// NewDefaultRegistry registers bedrock, gemini and fixture.
func NewDefaultRegistry() *ProviderRegistry {
	r := NewProviderRegistry()
	for _, f := range []ProviderFactory{
		bedrock.NewProviderFactory(),
		gemini.NewProviderFactory(),
		fixture.NewProviderFactory(),
	} {
		// names are distinct constants
		_ = r.Register(f.Name(), f)
	}
	return r
}

func (r *ProviderRegistry) Register(name string, factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.ErrProviderAlreadyRegistered.WithContext("provider", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *ProviderRegistry) Get(name string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, errors.ErrProviderNotSupported.WithContext("provider", name)
	}

	return factory, nil
}

// List returns the registered names in alphabetical order.
func (r *ProviderRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for name := range r.factories {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

func (r *ProviderRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// Resolve builds the configured provider. It returns a nil provider and no
// error when the provider is "none" or its credentials are absent, which
// routes analyses to the fallback catalog.
func (r *ProviderRegistry) Resolve(ctx context.Context, cfg *config.Config) (ai.InferenceProvider, error) {
	log := logger.FromContext(ctx)

	if cfg.Provider.Name == string(config.AINone) {
		log.Info("live analysis disabled by configuration")
		return nil, nil
	}

	factory, err := r.Get(cfg.Provider.Name)
	if err != nil {
		return nil, err
	}

	if !cfg.HasCredentials() {
		log.Info("provider credentials absent, using fallback diagnoses",
			"provider", cfg.Provider.Name)
		return nil, nil
	}

	provider, err := factory.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Debug("inference provider ready",
		"provider", provider.GetProviderName(),
		"model", provider.GetModelName())
	return provider, nil
}
