// Package di wires the analysis service from the loaded configuration.
package di

import (
	"context"
	"sync"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/ai/registry"
	"github.com/thomas-vilte/contextclue/internal/config"
	"github.com/thomas-vilte/contextclue/internal/diagnosis"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/services"
	"github.com/thomas-vilte/contextclue/internal/services/cost"
)

// Container builds the collaborators of the analysis service on first use and
// caches them.
type Container struct {
	config   *config.Config
	registry *registry.ProviderRegistry

	mu               sync.Mutex
	provider         ai.InferenceProvider
	providerResolved bool
	fallback         diagnosis.FallbackSource
	usage            *cost.Manager
	usageResolved    bool
}

func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:   cfg,
		registry: registry.NewDefaultRegistry(),
	}
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Registry() *registry.ProviderRegistry {
	return c.registry
}

// SetProvider overrides provider resolution. A nil provider forces fallback-only mode.
func (c *Container) SetProvider(p ai.InferenceProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
	c.providerResolved = true
}

// SetFallback overrides the fallback source.
func (c *Container) SetFallback(src diagnosis.FallbackSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = src
}

// SetUsageManager overrides the usage manager. A nil manager disables recording.
func (c *Container) SetUsageManager(m *cost.Manager) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = m
	c.usageResolved = true
}

// GetProvider resolves the configured provider. A nil provider with a nil
// error means live analysis is off.
func (c *Container) GetProvider(ctx context.Context) (ai.InferenceProvider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.providerResolved {
		return c.provider, nil
	}

	p, err := c.registry.Resolve(ctx, c.config)
	if err != nil {
		return nil, err
	}
	c.provider = p
	c.providerResolved = true
	return p, nil
}

// GetFallback returns the configured catalog, or the built-in one when
// fallback.catalog_path is empty.
func (c *Container) GetFallback() (diagnosis.FallbackSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fallback != nil {
		return c.fallback, nil
	}

	if c.config.Fallback.CatalogPath == "" {
		c.fallback = diagnosis.NewCatalog()
		return c.fallback, nil
	}

	catalog, err := diagnosis.LoadCatalogFile(c.config.Fallback.CatalogPath)
	if err != nil {
		return nil, err
	}
	c.fallback = catalog
	return c.fallback, nil
}

// GetUsageManager returns nil when history is disabled.
func (c *Container) GetUsageManager() (*cost.Manager, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.usageResolved {
		return c.usage, nil
	}

	if !c.config.History.Enabled {
		c.usageResolved = true
		return nil, nil
	}

	m, err := cost.NewManager(c.config.History.Path, c.config.Budget.DailyUSD)
	if err != nil {
		return nil, err
	}
	c.usage = m
	c.usageResolved = true
	return m, nil
}

// GetAnalysisService assembles the orchestrator. A provider that cannot be
// created or a history file that cannot be opened is logged and the service
// runs without it; an invalid fallback catalog is an error.
func (c *Container) GetAnalysisService(ctx context.Context, command string) (*services.AnalysisService, error) {
	fallback, err := c.GetFallback()
	if err != nil {
		return nil, err
	}

	provider, err := c.GetProvider(ctx)
	if err != nil {
		logger.Warn(ctx, "inference provider unavailable, serving fallback diagnoses",
			"provider", c.config.Provider.Name,
			"error", err)
		provider = nil
	}

	opts := []services.Option{
		services.WithFallback(fallback),
		services.WithProvider(provider),
	}

	if provider != nil {
		usage, err := c.GetUsageManager()
		if err != nil {
			logger.Warn(ctx, "usage history unavailable, spend will not be recorded", "error", err)
		} else if usage != nil {
			opts = append(opts, services.WithUsageManager(usage))
		}
	}

	return services.NewAnalysisService(services.Config{
		MaxCodeChars: c.config.Prompt.MaxCodeChars,
		Timeout:      c.config.Provider.Timeout,
		Command:      command,
	}, opts...), nil
}
