// File: internal/advisor/factory.go
package advisor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/config"
)

// NewClient is a factory that builds an Advisor for the configured provider,
// wrapped in the shared rate limiter.
func NewClient(ctx context.Context, cfg config.AdvisorConfig, logger *zap.Logger) (Advisor, error) {
	var (
		inner Advisor
		err   error
	)

	switch cfg.Provider {
	case config.ProviderGroq:
		inner, err = NewGroqClient(cfg, logger)
	case config.ProviderGemini:
		inner, err = NewGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported advisor provider: '%s'. Supported: [%s, %s]",
			cfg.Provider, config.ProviderGroq, config.ProviderGemini)
	}
	if err != nil {
		return nil, err
	}

	return NewLimited(inner, cfg.RateLimit, cfg.RateBurst), nil
}
