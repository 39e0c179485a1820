package cost

import (
	"fmt"
	"strings"
	"sync"
)

type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

type ProviderPricing map[string]map[string]PricingTable

// https://aws.amazon.com/bedrock/pricing/
// https://ai.google.dev/gemini-api/docs/pricing
var defaultPricing = ProviderPricing{
	"bedrock": {
		"amazon.nova-micro-v1:0": {InputPricePerMillion: 0.035, OutputPricePerMillion: 0.14},
		"amazon.nova-lite-v1:0":  {InputPricePerMillion: 0.06, OutputPricePerMillion: 0.24},
		"amazon.nova-pro-v1:0":   {InputPricePerMillion: 0.80, OutputPricePerMillion: 3.20},
	},
	"gemini": {
		"gemini-2.0-flash":      {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
		"gemini-2.0-flash-lite": {InputPricePerMillion: 0.075, OutputPricePerMillion: 0.30},
		"gemini-2.5-flash":      {InputPricePerMillion: 0.30, OutputPricePerMillion: 2.50},
		"gemini-2.5-pro":        {InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00},
	},
}

// Calculator estimates the USD cost of a call from its token counts.
// Fixture and unknown providers cost nothing.
type Calculator struct {
	mu      sync.RWMutex
	pricing ProviderPricing
}

func NewCalculator() *Calculator {
	pricing := make(ProviderPricing, len(defaultPricing))
	for provider, models := range defaultPricing {
		pricing[provider] = make(map[string]PricingTable, len(models))
		for model, table := range models {
			pricing[provider][model] = table
		}
	}
	return &Calculator{pricing: pricing}
}

// EstimateCost calculates the estimated cost based on provider, model, and tokens
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	table, ok := c.lookup(provider, model)
	if !ok {
		return 0
	}

	inputCost := (float64(inputTokens) / 1_000_000) * table.InputPricePerMillion
	outputCost := (float64(outputTokens) / 1_000_000) * table.OutputPricePerMillion

	return inputCost + outputCost
}

// GetPricing returns the pricing table for a provider and model
func (c *Calculator) GetPricing(provider, model string) (PricingTable, error) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	c.mu.RLock()
	defer c.mu.RUnlock()

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, fmt.Errorf("provider %s not found", provider)
	}

	modelPricing, exists := providerPricing[model]
	if !exists {
		return PricingTable{}, fmt.Errorf("model %s not found for provider %s", model, provider)
	}

	return modelPricing, nil
}

// AddPricing allows adding pricing dynamically (useful for testing or new models)
func (c *Calculator) AddPricing(provider, model string, table PricingTable) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pricing[provider]; !exists {
		c.pricing[provider] = make(map[string]PricingTable)
	}
	c.pricing[provider][model] = table
}

// lookup matches the model exactly, then by the longest known name it contains,
// so versioned ids like "gemini-2.5-flash-001" still price correctly.
func (c *Calculator) lookup(provider, model string) (PricingTable, bool) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	c.mu.RLock()
	defer c.mu.RUnlock()

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, false
	}
	if table, ok := providerPricing[model]; ok {
		return table, true
	}

	var best string
	for name := range providerPricing {
		if strings.Contains(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return PricingTable{}, false
	}
	return providerPricing[best], true
}
