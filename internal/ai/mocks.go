package ai

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/contextclue/internal/models"
)

type MockInferenceProvider struct {
	mock.Mock
}

func (m *MockInferenceProvider) Invoke(ctx context.Context, prompt string) (string, *models.TokenUsage, error) {
	args := m.Called(ctx, prompt)
	var usage *models.TokenUsage
	if u := args.Get(1); u != nil {
		usage = u.(*models.TokenUsage)
	}
	return args.String(0), usage, args.Error(2)
}

func (m *MockInferenceProvider) GetModelName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockInferenceProvider) GetProviderName() string {
	args := m.Called()
	return args.String(0)
}
