// Package bedrock implements ai.InferenceProvider on top of the AWS Bedrock
// Runtime InvokeModel API using the Amazon Nova message format.
package bedrock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/models"
)

const (
	ProviderName = "bedrock"

	DefaultModel     = "amazon.nova-lite-v1:0"
	DefaultRegion    = "us-east-1"
	DefaultMaxTokens = 500

	contentTypeJSON = "application/json"
)

var _ ai.InferenceProvider = (*Provider)(nil)

// InvokeModelAPI is the slice of the Bedrock Runtime client the provider needs.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Config struct {
	Region          string
	Model           string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	MaxTokens       int
}

type Provider struct {
	client    InvokeModelAPI
	model     string
	maxTokens int
}

// New builds a provider with static credentials. Both key parts are required.
func New(cfg Config) (*Provider, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.ErrCredentialsMissing.WithContext("provider", ProviderName)
	}

	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	client := bedrockruntime.NewFromConfig(aws.Config{
		Region: region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		),
		// one request, one outbound call
		RetryMaxAttempts: 1,
	})

	return NewWithClient(client, cfg), nil
}

// NewWithClient wires an existing client, used by tests and callers that
// build their own aws.Config.
func NewWithClient(client InvokeModelAPI, cfg Config) *Provider {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Provider{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (p *Provider) GetModelName() string { return p.model }

func (p *Provider) GetProviderName() string { return ProviderName }

type textBlock struct {
	Text string `json:"text"`
}

type message struct {
	Role    string      `json:"role"`
	Content []textBlock `json:"content"`
}

type inferenceConfig struct {
	MaxNewTokens int `json:"max_new_tokens"`
}

type invokeRequest struct {
	Messages        []message       `json:"messages"`
	InferenceConfig inferenceConfig `json:"inferenceConfig"`
}

type invokeResponse struct {
	Output struct {
		Message message `json:"message"`
	} `json:"output"`
	StopReason string `json:"stopReason"`
	Usage      struct {
		InputTokens  int `json:"inputTokens"`
		OutputTokens int `json:"outputTokens"`
		TotalTokens  int `json:"totalTokens"`
	} `json:"usage"`
}

func (p *Provider) Invoke(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)

	body, err := json.Marshal(invokeRequest{
		Messages:        []message{{Role: "user", Content: []textBlock{{Text: prompt}}}},
		InferenceConfig: inferenceConfig{MaxNewTokens: p.maxTokens},
	})
	if err != nil {
		return "", nil, errors.NewAppError(errors.TypeInternal, "error encoding bedrock request", err)
	}

	log.Debug("calling bedrock",
		"model", p.model,
		"prompt_length", len(prompt))

	out, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.model),
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
		Body:        body,
	})
	if err != nil {
		log.Debug("bedrock call failed",
			"model", p.model,
			"error", err)
		return "", nil, ai.ClassifyProviderError(err, ProviderName)
	}

	var resp invokeResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", nil, errors.ErrEmptyProviderOutput.
			WithError(err).
			WithContext("provider", ProviderName).
			WithContext("reason", "response envelope is not JSON")
	}

	content := resp.Output.Message.Content
	if len(content) == 0 || strings.TrimSpace(content[0].Text) == "" {
		return "", nil, errors.ErrEmptyProviderOutput.
			WithContext("provider", ProviderName).
			WithContext("stop_reason", resp.StopReason)
	}

	usage := &models.TokenUsage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}

	return content[0].Text, usage, nil
}
