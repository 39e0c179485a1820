// Package fixture is an InferenceProvider that replays provider output from a
// local file. It makes the live path reproducible without cloud credentials.
package fixture

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/models"
)

const (
	ProviderName = "fixture"
	ModelName    = "fixture"
)

var _ ai.InferenceProvider = (*Provider)(nil)

type Provider struct {
	path string
}

// New checks that the file exists; it is re-read on every call so edits show
// up without a restart.
func New(path string) (*Provider, error) {
	if path == "" {
		return nil, errors.ErrCredentialsMissing.
			WithContext("provider", ProviderName).
			WithSuggestion("Set fixture.path to a file containing a raw provider answer")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.ErrConfigInvalid.
			WithError(err).
			WithContext("reason", fmt.Sprintf("fixture file %s is not readable", path))
	}
	return &Provider{path: path}, nil
}

func (p *Provider) GetModelName() string { return ModelName }

func (p *Provider) GetProviderName() string { return ProviderName }

func (p *Provider) Invoke(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, ai.ClassifyProviderError(err, ProviderName)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return "", nil, errors.ErrProviderCall.WithError(err).WithContext("provider", ProviderName)
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", nil, errors.ErrEmptyProviderOutput.WithContext("provider", ProviderName)
	}

	input := len(prompt) / 4
	output := len(text) / 4
	return text, &models.TokenUsage{
		InputTokens:  input,
		OutputTokens: output,
		TotalTokens:  input + output,
	}, nil
}
