// Package gemini implements ai.InferenceProvider with the Google Gen AI SDK.
package gemini

import (
	"context"
	"strings"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/models"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"

	DefaultModel     = "gemini-2.5-flash"
	DefaultMaxTokens = 500

	responseMIMEType = "application/json"
)

var _ ai.InferenceProvider = (*Provider)(nil)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type Provider struct {
	model      string
	maxTokens  int
	generateFn generateFunc
}

// New creates a Gemini API client. An empty API key is ErrCredentialsMissing.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.ErrCredentialsMissing.WithContext("provider", ProviderName)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, ai.ClassifyProviderError(err, ProviderName)
	}

	return newProvider(cfg, client.Models.GenerateContent), nil
}

func newProvider(cfg Config, fn generateFunc) *Provider {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Provider{
		model:      model,
		maxTokens:  maxTokens,
		generateFn: fn,
	}
}

func (p *Provider) GetModelName() string { return p.model }

func (p *Provider) GetProviderName() string { return ProviderName }

func (p *Provider) Invoke(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)

	log.Debug("calling gemini",
		"model", p.model,
		"prompt_length", len(prompt))

	resp, err := p.generateFn(ctx, p.model, genai.Text(prompt), GetGenerateConfig(p.model, p.maxTokens))
	if err != nil {
		log.Debug("gemini call failed",
			"model", p.model,
			"error", err)
		return "", nil, ai.ClassifyProviderError(err, ProviderName)
	}

	text := formatResponse(resp)
	if strings.TrimSpace(text) == "" {
		appErr := errors.ErrEmptyProviderOutput.WithContext("provider", ProviderName)
		if resp != nil && len(resp.Candidates) > 0 {
			appErr = appErr.WithContext("finish_reason", string(resp.Candidates[0].FinishReason))
		}
		return "", nil, appErr
	}

	return text, extractUsage(resp), nil
}
