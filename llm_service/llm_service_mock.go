package llm_service

import (
	"context"
)

type MockLLMService struct {
	GenerateFunc func(ctx context.Context, messages []Message, temperature float64) (string, error)
}

func (m *MockLLMService) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, messages, temperature)
	}
	return "mock response", nil
}
