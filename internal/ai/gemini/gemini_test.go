package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/contextclue/internal/errors"
	"google.golang.org/genai"
)

type recordedCall struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func fakeGenerate(resp *genai.GenerateContentResponse, err error, rec *recordedCall) generateFunc {
	return func(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		if rec != nil {
			rec.model = model
			rec.contents = contents
			rec.config = config
		}
		return resp, err
	}
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: parts},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     700,
			CandidatesTokenCount: 90,
			TotalTokenCount:      790,
		},
	}
}

func TestNew_RequiresAPIKey(t *testing.T) {
	p, err := New(context.Background(), Config{})

	assert.Nil(t, p)
	assert.True(t, errors.Is(err, domainErrors.ErrCredentialsMissing))
}

func TestProvider_Invoke(t *testing.T) {
	// Arrange
	rec := &recordedCall{}
	resp := textResponse(
		&genai.Part{Text: "thinking about z-index...", Thought: true},
		&genai.Part{Text: `{"bugLocation":"Line 42 in Header.tsx",`},
		&genai.Part{Text: `"confidence":94}`},
	)
	p := newProvider(Config{}, fakeGenerate(resp, nil, rec))

	// Act
	text, usage, err := p.Invoke(context.Background(), "the prompt")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, `{"bugLocation":"Line 42 in Header.tsx","confidence":94}`, text)
	assert.Equal(t, 700, usage.InputTokens)
	assert.Equal(t, 90, usage.OutputTokens)
	assert.Equal(t, 790, usage.TotalTokens)

	assert.Equal(t, DefaultModel, rec.model)
	require.Len(t, rec.contents, 1)
	assert.Equal(t, "the prompt", rec.contents[0].Parts[0].Text)
	assert.Equal(t, int32(500), rec.config.MaxOutputTokens)
	assert.Equal(t, "application/json", rec.config.ResponseMIMEType)
}

func TestProvider_Invoke_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		wantErr *domainErrors.AppError
	}{
		{name: "quota", err: errors.New("Error 429, Message: Resource has been exhausted (e.g. check quota)."), wantErr: domainErrors.ErrQuotaExceeded},
		{name: "bad key", err: errors.New("Error 400, Message: API key not valid."), wantErr: domainErrors.ErrProviderAuth},
		{name: "network", err: errors.New("connection refused"), wantErr: domainErrors.ErrProviderCall},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, wantErr: domainErrors.ErrEmptyProviderOutput},
		{name: "only thoughts", resp: textResponse(&genai.Part{Text: "hmm", Thought: true}), wantErr: domainErrors.ErrEmptyProviderOutput},
		{name: "nil response", wantErr: domainErrors.ErrEmptyProviderOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			p := newProvider(Config{Model: "gemini-2.0-flash"}, fakeGenerate(tt.resp, tt.err, nil))

			// Act
			text, usage, err := p.Invoke(context.Background(), "prompt")

			// Assert
			assert.Empty(t, text)
			assert.Nil(t, usage)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestExtractUsage(t *testing.T) {
	t.Run("nil response", func(t *testing.T) {
		assert.Nil(t, extractUsage(nil))
	})

	t.Run("nil UsageMetadata", func(t *testing.T) {
		assert.Nil(t, extractUsage(&genai.GenerateContentResponse{}))
	})
}

func TestGetGenerateConfig(t *testing.T) {
	t.Run("flash 2.5 disables thinking", func(t *testing.T) {
		cfg := GetGenerateConfig("gemini-2.5-flash", 500)

		require.NotNil(t, cfg.ThinkingConfig)
		assert.Equal(t, int32(0), *cfg.ThinkingConfig.ThinkingBudget)
		assert.Equal(t, float32(0.2), *cfg.Temperature)
	})

	t.Run("other models keep their default", func(t *testing.T) {
		cfg := GetGenerateConfig("gemini-2.0-flash", 300)

		assert.Nil(t, cfg.ThinkingConfig)
		assert.Equal(t, int32(300), cfg.MaxOutputTokens)
	})
}
