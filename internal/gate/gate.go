// Package gate pre-filters jobs before any form work starts.
package gate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/advisor"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

// descriptionPrefix bounds how much of the job description goes into the
// advisory prompt.
const descriptionPrefix = 500

// engineeringKeywords is the deterministic fallback when the advisory service
// is unavailable.
var engineeringKeywords = []string{
	"software engineer", "developer", "programmer",
	"backend", "frontend", "full stack", "fullstack",
}

const systemPrompt = "You are an expert career advisor. Analyze if this job matches " +
	"software engineering criteria. Return ONLY 'YES' or 'NO' followed by a brief reason."

// Gate decides whether a job description warrants starting the application
// flow. The advisory tier can fail freely; the keyword tier always answers.
type Gate struct {
	advisor advisor.Advisor
	profile *profile.Profile
	logger  *zap.Logger
}

func New(adv advisor.Advisor, p *profile.Profile, logger *zap.Logger) *Gate {
	return &Gate{advisor: adv, profile: p, logger: logger.Named("gate")}
}

// Decide returns whether to apply and the reason for the decision.
func (g *Gate) Decide(ctx context.Context, description string) (bool, string) {
	if g.advisor != nil {
		if apply, reason, ok := g.askAdvisor(ctx, description); ok {
			return apply, reason
		}
	}
	return g.keywordMatch(description)
}

func (g *Gate) askAdvisor(ctx context.Context, description string) (bool, string, bool) {
	prefix := description
	if len(prefix) > descriptionPrefix {
		prefix = prefix[:descriptionPrefix]
	}
	prompt := fmt.Sprintf(`Job Description: %s
Candidate Skills: %s

Is this a software engineering related position? Answer YES or NO and brief reason.`,
		prefix, strings.Join(g.profile.Skills(), ", "))

	response, err := g.advisor.Ask(ctx, prompt, systemPrompt)
	if err != nil || strings.TrimSpace(response) == "" {
		g.logger.Warn("Advisory gate unavailable, using keyword fallback", zap.Error(err))
		return false, "", false
	}

	// The verdict is the leading token; scan only the head of the response
	// so a trailing "yes" in the reason can't flip a NO.
	head := strings.ToLower(response)
	if len(head) > 20 {
		head = head[:20]
	}
	return strings.Contains(head, "yes"), strings.TrimSpace(response), true
}

func (g *Gate) keywordMatch(description string) (bool, string) {
	lower := strings.ToLower(description)
	for _, kw := range engineeringKeywords {
		if strings.Contains(lower, kw) {
			return true, "Keyword match"
		}
	}
	return false, "No match"
}
