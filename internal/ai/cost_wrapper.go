package ai

import (
	"context"
	"time"

	"github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/logger"
	"github.com/thomas-vilte/contextclue/internal/models"
	"github.com/thomas-vilte/contextclue/internal/services/cost"
)

// charsPerToken is the rough ratio used to estimate input tokens before a call.
const charsPerToken = 4

// CostAwareWrapper decorates an InferenceProvider with the daily budget gate
// and usage recording. It is itself an InferenceProvider. The estimated cost
// stays reserved with the manager until the call is recorded, so concurrent
// calls cannot jointly overshoot the daily budget.
type CostAwareWrapper struct {
	provider              InferenceProvider
	calculator            *cost.Calculator
	manager               *cost.Manager
	estimatedOutputTokens int
	command               string
}

var _ InferenceProvider = (*CostAwareWrapper)(nil)

type WrapperConfig struct {
	Provider              InferenceProvider
	Manager               *cost.Manager
	Calculator            *cost.Calculator
	EstimatedOutputTokens int
	Command               string
}

// NewCostAwareWrapper creates a provider-agnostic wrapper. A nil Calculator gets the default pricing.
func NewCostAwareWrapper(cfg WrapperConfig) *CostAwareWrapper {
	calculator := cfg.Calculator
	if calculator == nil {
		calculator = cost.NewCalculator()
	}
	command := cfg.Command
	if command == "" {
		command = "analyze"
	}
	return &CostAwareWrapper{
		provider:              cfg.Provider,
		calculator:            calculator,
		manager:               cfg.Manager,
		estimatedOutputTokens: cfg.EstimatedOutputTokens,
		command:               command,
	}
}

func (w *CostAwareWrapper) GetProviderName() string { return w.provider.GetProviderName() }

func (w *CostAwareWrapper) GetModelName() string { return w.provider.GetModelName() }

// Invoke refuses the call when the daily budget would be exceeded, otherwise
// forwards it and records the spend. Recording failures are logged only.
func (w *CostAwareWrapper) Invoke(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	log := logger.FromContext(ctx)
	startTime := time.Now()

	providerName := w.provider.GetProviderName()
	modelName := w.provider.GetModelName()

	if w.manager != nil {
		estimated := w.calculator.EstimateCost(providerName, modelName, len(prompt)/charsPerToken, w.estimatedOutputTokens)
		status, release, err := w.manager.ReserveBudget(estimated)
		defer release()
		switch {
		case err != nil:
			log.Warn("budget check failed, continuing without it",
				"error", err)
		case status.IsExceeded:
			return "", nil, errors.ErrBudgetExceeded.
				WithContext("today_total", status.TodayTotal).
				WithContext("limit", status.Limit)
		case status.IsWarning:
			log.Warn("daily budget nearly used",
				"percent_used", status.PercentUsed,
				"level", status.WarningLevel)
		}
	}

	text, usage, err := w.provider.Invoke(ctx, prompt)
	if err != nil {
		return "", nil, err
	}

	if usage == nil {
		usage = &models.TokenUsage{}
	}
	usage.Model = modelName
	usage.CostUSD = w.calculator.EstimateCost(providerName, modelName, usage.InputTokens, usage.OutputTokens)
	usage.DurationMs = time.Since(startTime).Milliseconds()

	if w.manager != nil {
		if err := w.manager.SaveActivity(cost.ActivityRecord{
			Timestamp:    time.Now(),
			Command:      w.command,
			Provider:     providerName,
			Model:        modelName,
			TokensInput:  usage.InputTokens,
			TokensOutput: usage.OutputTokens,
			CostUSD:      usage.CostUSD,
			DurationMs:   usage.DurationMs,
		}); err != nil {
			log.Warn("failed to record usage",
				"error", err)
		}
	}

	log.Debug("provider call tracked",
		"provider", providerName,
		"model", modelName,
		"cost_usd", usage.CostUSD,
		"duration_ms", usage.DurationMs)

	return text, usage, nil
}
