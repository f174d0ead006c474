// Package advisor is the boundary to the language-model advisory service.
//
// Advisory calls are best effort by contract: a timeout, a bad status, or a
// malformed payload is a normal outcome, and every caller degrades to a
// deterministic fallback. Nothing in this package is load bearing for the
// application flow.
package advisor

import "context"

// Advisor issues a single synchronous request to the advisory service and
// returns the raw text reply.
type Advisor interface {
	Ask(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// Verifier is implemented by providers that can cheaply probe connectivity
// before the session starts.
type Verifier interface {
	Verify(ctx context.Context) error
}
