package llm_service

import (
	"context"
	"errors"
	"log/slog"
)

// FallbackService wraps a primary and a secondary provider. Every call starts
// at the primary; a primary failure is retried exactly once, immediately,
// against the secondary. A secondary failure ends the call. There is no
// cooldown and no sticky failover between calls.
type FallbackService struct {
	primary        LLMService
	secondary      LLMService
	logger         *slog.Logger
	forceSecondary bool
}

func NewFallbackService(primary, secondary LLMService, logger *slog.Logger, forceSecondary bool) *FallbackService {
	return &FallbackService{
		primary:        primary,
		secondary:      secondary,
		logger:         logger,
		forceSecondary: forceSecondary,
	}
}

func (s *FallbackService) Generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	if s.forceSecondary {
		return s.secondary.Generate(ctx, messages, temperature)
	}

	result, err := s.primary.Generate(ctx, messages, temperature)
	if err == nil {
		return result, nil
	}

	var httpErr *OpenAIHttpError
	if errors.As(err, &httpErr) && httpErr.StatusCode == 429 {
		s.logger.Warn("Primary provider quota exceeded, falling back to secondary provider",
			slog.Int("status_code", httpErr.StatusCode),
			slog.String("error", err.Error()))
	} else {
		s.logger.Warn("Primary provider call failed, falling back to secondary provider",
			slog.String("error", err.Error()))
	}

	result, err = s.secondary.Generate(ctx, messages, temperature)
	if err != nil {
		s.logger.Error("Secondary provider call failed",
			slog.String("error", err.Error()))
		return "", err
	}

	return result, nil
}
