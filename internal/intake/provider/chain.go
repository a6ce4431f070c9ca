// internal/intake/provider/chain.go

// Package provider issues completion requests against an ordered list of
// models, falling through to the next model on any failure.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logistics-intake/internal/common/logger"
	"logistics-intake/internal/common/metrics"
)

// Attempter performs one completion call against one model.
type Attempter interface {
	Attempt(ctx context.Context, model, systemPrompt, userContext string) (string, error)
}

// Chain tries each configured model once, in order, and stops at the first
// success. There is no backoff and no state carried between invocations; every
// call starts the chain fresh.
type Chain struct {
	models []string
	client Attempter
	logger logger.Logger
}

func NewChain(models []string, client Attempter, log logger.Logger) *Chain {
	return &Chain{
		models: models,
		client: client,
		logger: log.With(map[string]interface{}{
			"component": "provider-chain",
		}),
	}
}

// Complete returns the first successful completion, or ErrChainExhausted once
// every model has failed.
func (c *Chain) Complete(ctx context.Context, systemPrompt, userContext string) (string, error) {
	var lastErr error

	for i, model := range c.models {
		start := time.Now()
		text, err := c.client.Attempt(ctx, model, systemPrompt, userContext)
		metrics.ProviderDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.ProviderAttempts.WithLabelValues(model, "success").Inc()
			c.logger.Info("completion succeeded", map[string]interface{}{
				"model":   model,
				"attempt": i + 1,
			})
			return text, nil
		}

		outcome := "error"
		var rle *RateLimitError
		if errors.As(err, &rle) {
			outcome = "rate_limited"
		}
		metrics.ProviderAttempts.WithLabelValues(model, outcome).Inc()

		c.logger.Warn("model failed, trying next in chain", map[string]interface{}{
			"model":   model,
			"outcome": outcome,
			"error":   err.Error(),
		})
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v", ErrChainExhausted, lastErr)
}
