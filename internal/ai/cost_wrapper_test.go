package ai

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/contextclue/internal/errors"
	"github.com/thomas-vilte/contextclue/internal/models"
	"github.com/thomas-vilte/contextclue/internal/services/cost"
)

func newTestManager(t *testing.T, budget float64) *cost.Manager {
	t.Helper()
	m, err := cost.NewManager(filepath.Join(t.TempDir(), "history.json"), budget)
	require.NoError(t, err)
	return m
}

func newBedrockMock() *MockInferenceProvider {
	p := &MockInferenceProvider{}
	p.On("GetProviderName").Return("bedrock")
	p.On("GetModelName").Return("amazon.nova-lite-v1:0")
	return p
}

func TestCostAwareWrapper_RecordsUsage(t *testing.T) {
	// Arrange
	provider := newBedrockMock()
	provider.On("Invoke", mock.Anything, "prompt").
		Return(`{"a":1}`, &models.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}, nil)
	manager := newTestManager(t, 0)
	w := NewCostAwareWrapper(WrapperConfig{Provider: provider, Manager: manager})

	// Act
	text, usage, err := w.Invoke(context.Background(), "prompt")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text)
	assert.Equal(t, "amazon.nova-lite-v1:0", usage.Model)
	assert.InDelta(t, 0.30, usage.CostUSD, 1e-9)

	history, err := manager.GetHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "analyze", history[0].Command)
	assert.Equal(t, "bedrock", history[0].Provider)
	provider.AssertExpectations(t)
}

func TestCostAwareWrapper_NilUsage(t *testing.T) {
	// Arrange
	provider := newBedrockMock()
	provider.On("Invoke", mock.Anything, "prompt").Return("text", nil, nil)
	w := NewCostAwareWrapper(WrapperConfig{Provider: provider})

	// Act
	_, usage, err := w.Invoke(context.Background(), "prompt")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Zero(t, usage.CostUSD)
	assert.Equal(t, "amazon.nova-lite-v1:0", usage.Model)
}

func TestCostAwareWrapper_BudgetExceeded(t *testing.T) {
	// Arrange
	provider := newBedrockMock()
	manager := newTestManager(t, 0.01)
	require.NoError(t, manager.SaveActivity(cost.ActivityRecord{Timestamp: time.Now(), CostUSD: 0.02}))
	w := NewCostAwareWrapper(WrapperConfig{Provider: provider, Manager: manager, EstimatedOutputTokens: 500})

	// Act
	_, _, err := w.Invoke(context.Background(), "prompt")

	// Assert
	assert.True(t, errors.Is(err, domainErrors.ErrBudgetExceeded))
	provider.AssertNotCalled(t, "Invoke", mock.Anything, mock.Anything)
}

func TestCostAwareWrapper_ConcurrentCallsShareBudget(t *testing.T) {
	// Arrange
	const callers = 5
	gate := make(chan struct{})
	provider := newBedrockMock()
	provider.On("Invoke", mock.Anything, "prompt").
		Run(func(mock.Arguments) { <-gate }).
		Return(`{"a":1}`, &models.TokenUsage{InputTokens: 100, OutputTokens: 100}, nil)
	// one call is estimated at about 0.24 USD, so only one fits
	manager := newTestManager(t, 0.30)
	w := NewCostAwareWrapper(WrapperConfig{Provider: provider, Manager: manager, EstimatedOutputTokens: 1_000_000})
	results := make(chan error, callers)

	// Act
	for i := 0; i < callers; i++ {
		go func() {
			_, _, err := w.Invoke(context.Background(), "prompt")
			results <- err
		}()
	}
	var errs []error
	for i := 0; i < callers-1; i++ {
		errs = append(errs, <-results)
	}
	close(gate)
	errs = append(errs, <-results)

	// Assert
	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, domainErrors.ErrBudgetExceeded))
	}
	assert.Equal(t, 1, succeeded)
	provider.AssertNumberOfCalls(t, "Invoke", 1)

	history, err := manager.GetHistory()
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCostAwareWrapper_ProviderErrorIsNotRecorded(t *testing.T) {
	// Arrange
	provider := newBedrockMock()
	callErr := domainErrors.ErrProviderCall.WithError(errors.New("network unreachable"))
	provider.On("Invoke", mock.Anything, "prompt").Return("", nil, callErr)
	manager := newTestManager(t, 0)
	w := NewCostAwareWrapper(WrapperConfig{Provider: provider, Manager: manager})

	// Act
	_, usage, err := w.Invoke(context.Background(), "prompt")

	// Assert
	assert.Same(t, callErr, err)
	assert.Nil(t, usage)
	history, histErr := manager.GetHistory()
	require.NoError(t, histErr)
	assert.Empty(t, history)
}

func TestCostAwareWrapper_DelegatesNames(t *testing.T) {
	provider := newBedrockMock()
	w := NewCostAwareWrapper(WrapperConfig{Provider: provider})

	assert.Equal(t, "bedrock", w.GetProviderName())
	assert.Equal(t, "amazon.nova-lite-v1:0", w.GetModelName())
}
