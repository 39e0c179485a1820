package services

import (
	"context"
	stdErrors "errors"
	"strings"
	"time"

	"github.com/thomas-vilte/contextclue/internal/ai"
	"github.com/thomas-vilte/contextclue/internal/diagnosis"
	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/models"
	"github.com/thomas-vilte/contextclue/internal/services/cost"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultCommand = "analyze"

	failureProvider   = "provider"
	failureBudget     = "budget"
	failureExtraction = "extraction"
	failureValidation = "validation"
)

// Config is the explicit configuration of an AnalysisService.
type Config struct {
	// MaxCodeChars bounds how much code reaches the prompt. <= 0 means ai.MaxCodeChars.
	MaxCodeChars int
	// Timeout bounds a single provider call. <= 0 means DefaultTimeout.
	Timeout time.Duration
	// Command labels recorded usage, e.g. "analyze" or "serve". Empty means "analyze".
	Command string
}

type Option func(*AnalysisService)

// WithProvider enables live analysis. A nil provider keeps the service in fallback-only mode.
func WithProvider(p ai.InferenceProvider) Option {
	return func(s *AnalysisService) {
		s.provider = p
	}
}

// WithFallback replaces the built-in catalog.
func WithFallback(src diagnosis.FallbackSource) Option {
	return func(s *AnalysisService) {
		if src != nil {
			s.fallback = src
		}
	}
}

// WithUsageManager records provider spend and enforces the manager's daily budget.
func WithUsageManager(m *cost.Manager) Option {
	return func(s *AnalysisService) {
		s.usage = m
	}
}

// AnalysisService turns an analysis request into exactly one diagnosis. It is
// immutable after construction and safe for concurrent use.
type AnalysisService struct {
	provider     ai.InferenceProvider
	fallback     diagnosis.FallbackSource
	usage        *cost.Manager
	maxCodeChars int
	timeout      time.Duration
}

func NewAnalysisService(cfg Config, opts ...Option) *AnalysisService {
	s := &AnalysisService{
		fallback:     diagnosis.NewCatalog(),
		maxCodeChars: cfg.MaxCodeChars,
		timeout:      cfg.Timeout,
	}
	if s.maxCodeChars <= 0 {
		s.maxCodeChars = ai.MaxCodeChars
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	command := cfg.Command
	if command == "" {
		command = DefaultCommand
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.provider != nil && s.usage != nil {
		s.provider = ai.NewCostAwareWrapper(ai.WrapperConfig{
			Provider:              s.provider,
			Manager:               s.usage,
			EstimatedOutputTokens: 500,
			Command:               command,
		})
	}
	return s
}

// LiveEnabled reports whether a provider is configured.
func (s *AnalysisService) LiveEnabled() bool {
	return s.provider != nil
}

// Analyze always yields a schema-valid diagnosis. Provider, extraction and
// validation failures are logged and replaced by a fallback; the only error is
// a context that was already done before any work started.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest) (*models.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx = logger.With(ctx,
		"code_name", req.CodeName,
		"screenshot_name", req.ScreenshotName)
	log := logger.FromContext(ctx)

	if s.provider == nil {
		log.Info("no inference provider configured, serving fallback")
		return s.fallbackAnalysis(), nil
	}

	if strings.TrimSpace(req.CodeContent) == "" {
		log.Info("no code submitted, serving fallback")
		return s.fallbackAnalysis(), nil
	}

	result, usage, err := s.analyzeLive(ctx, req)
	if err != nil {
		log.Warn("live analysis failed, serving fallback",
			"failure_class", failureClass(err),
			"provider", s.provider.GetProviderName(),
			"error", err)
		return s.fallbackAnalysis(), nil
	}

	log.Info("live analysis succeeded",
		"provider", s.provider.GetProviderName(),
		"model", s.provider.GetModelName(),
		"confidence", result.Confidence)

	return &models.Analysis{
		Result:   result,
		Source:   models.SourceLive,
		Provider: s.provider.GetProviderName(),
		Model:    s.provider.GetModelName(),
		Usage:    usage,
	}, nil
}

func (s *AnalysisService) analyzeLive(ctx context.Context, req models.AnalysisRequest) (models.DiagnosisResult, *models.TokenUsage, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := ai.BuildPromptWithLimit(req.CodeContent, req.CodeName, s.maxCodeChars)

	text, usage, err := s.provider.Invoke(callCtx, prompt)
	if err != nil {
		return models.DiagnosisResult{}, nil, err
	}

	obj, err := ai.ExtractJSON(text)
	if err != nil {
		return models.DiagnosisResult{}, nil, err
	}

	result, err := diagnosis.Validate(obj)
	if err != nil {
		return models.DiagnosisResult{}, nil, err
	}

	return result, usage, nil
}

func (s *AnalysisService) fallbackAnalysis() *models.Analysis {
	return &models.Analysis{
		Result: s.fallback.Pick(),
		Source: models.SourceFallback,
	}
}

func failureClass(err error) string {
	if stdErrors.Is(err, errors.ErrBudgetExceeded) {
		return failureBudget
	}
	var appErr *errors.AppError
	if stdErrors.As(err, &appErr) {
		switch appErr.Type {
		case errors.TypeExtraction:
			return failureExtraction
		case errors.TypeValidation:
			return failureValidation
		}
	}
	return failureProvider
}
