// File: internal/advisor/limited.go
package advisor

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited wraps an Advisor with a client-side rate limiter. A fill pass can
// trigger an advisory call per unknown field; without a limiter a long form
// turns into a request burst the service throttles anyway.
type Limited struct {
	inner Advisor
	lim   *rate.Limiter
}

// NewLimited builds the wrapper. A non-positive rps disables limiting.
func NewLimited(inner Advisor, rps float64, burst int) *Limited {
	if rps <= 0 {
		return &Limited{inner: inner, lim: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{inner: inner, lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Ask waits for limiter clearance, then delegates.
func (l *Limited) Ask(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return "", err
	}
	return l.inner.Ask(ctx, prompt, systemPrompt)
}

// Verify delegates to the wrapped provider when it supports probing.
func (l *Limited) Verify(ctx context.Context) error {
	if v, ok := l.inner.(Verifier); ok {
		return v.Verify(ctx)
	}
	return nil
}
