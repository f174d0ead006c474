package form

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

// ChoiceOutcome describes how a choice group was settled.
type ChoiceOutcome string

const (
	// ChoiceKept means an option was already selected and left alone.
	ChoiceKept ChoiceOutcome = "kept"
	// ChoiceSelected means the resolver picked an option.
	ChoiceSelected ChoiceOutcome = "selected"
	// ChoiceUnresolved means no selectable option was found.
	ChoiceUnresolved ChoiceOutcome = "unresolved"
)

// ChoiceSelection is the resolver's decision for one group. For fieldsets the
// option's Ref addresses the label to click; for selects the Index addresses
// the option.
type ChoiceSelection struct {
	Outcome ChoiceOutcome
	Option  dom.RawOption
	Target  string
}

// ChoiceResolver settles compliance and preference questions against a fixed
// policy table, driven by profile booleans where the question is about the
// candidate's own preferences.
type ChoiceResolver struct {
	profile *profile.Profile
	logger  *zap.Logger
}

func NewChoiceResolver(p *profile.Profile, logger *zap.Logger) *ChoiceResolver {
	return &ChoiceResolver{profile: p, logger: logger.Named("choices")}
}

// choicePolicy pairs a question predicate with the target answer for it.
type choicePolicy struct {
	match  func(question string) bool
	target func(p *profile.Profile) string
}

func questionHasAny(words ...string) func(string) bool {
	return func(q string) bool {
		for _, w := range words {
			if strings.Contains(q, w) {
				return true
			}
		}
		return false
	}
}

func fixedAnswer(answer string) func(*profile.Profile) string {
	return func(*profile.Profile) string { return answer }
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var choicePolicies = []choicePolicy{
	{questionHasAny("commut", "location", "travel to"), func(p *profile.Profile) string {
		return yesNo(p.WillingToCommute())
	}},
	{questionHasAny("sponsorship", "visa", "work authorization", "authorized to work", "right to work"),
		func(p *profile.Profile) string {
			return yesNo(p.RequiresSponsorship())
		}},
	{questionHasAny("relocat", "willing to move"), func(p *profile.Profile) string {
		return yesNo(p.WillingToRelocate())
	}},
	{questionHasAny("remote", "work from home", "hybrid"), func(p *profile.Profile) string {
		pref := p.RemotePreference()
		switch {
		case strings.Contains(pref, "hybrid"):
			return "hybrid"
		case strings.Contains(pref, "remote"):
			return "remote"
		default:
			return "yes"
		}
	}},
	{questionHasAny("clearance", "security"), fixedAnswer("no")},
	{questionHasAny("background check", "background screening"), fixedAnswer("yes")},
	{func(q string) bool {
		return strings.Contains(q, "drug") && strings.Contains(q, "test")
	}, fixedAnswer("yes")},
	{questionHasAny("18 years", "legal age", "age of majority"), fixedAnswer("yes")},
	{questionHasAny("eligible to work", "legally authorized"), fixedAnswer("yes")},
	{questionHasAny("previously applied", "applied before"), fixedAnswer("no")},
	{questionHasAny("know anyone", "employee referral"), fixedAnswer("no")},
	{questionHasAny("immediately", "urgent"), fixedAnswer("yes")},
}

// ResolveGroup decides the selection for a fieldset choice group. An already
// selected option is always kept; selection otherwise walks the target token,
// its synonyms, and finally the first option.
func (r *ChoiceResolver) ResolveGroup(_ context.Context, group dom.RawChoiceGroup) ChoiceSelection {
	question := strings.ToLower(group.Question)
	if len(group.Options) == 0 {
		return ChoiceSelection{Outcome: ChoiceUnresolved}
	}

	for _, opt := range group.Options {
		if opt.Selected {
			r.logger.Debug("Keeping existing selection",
				zap.String("question", truncate(group.Question, 60)),
				zap.String("option", truncate(opt.Text, 30)))
			return ChoiceSelection{Outcome: ChoiceKept, Option: opt}
		}
	}

	target := ""
	for _, policy := range choicePolicies {
		if policy.match(question) {
			target = policy.target(r.profile)
			break
		}
	}

	if target != "" {
		if opt, ok := matchOption(group.Options, target); ok {
			r.logger.Info("Selected option",
				zap.String("question", truncate(group.Question, 60)),
				zap.String("option", truncate(opt.Text, 40)),
				zap.String("target", target))
			return ChoiceSelection{Outcome: ChoiceSelected, Option: opt, Target: target}
		}
		r.logger.Warn("No option matched target",
			zap.String("question", truncate(group.Question, 60)),
			zap.String("target", target))
	}

	// Last resort: first option, so a required question never blocks the
	// advance.
	first := group.Options[0]
	r.logger.Info("Selected first option as default",
		zap.String("question", truncate(group.Question, 60)),
		zap.String("option", truncate(first.Text, 30)))
	return ChoiceSelection{Outcome: ChoiceSelected, Option: first, Target: target}
}

var (
	yesSynonyms = []string{"yes", "i am", "i do", "willing", "able"}
	noSynonyms  = []string{"no", "not", "don't", "unable", "do not require"}
)

// matchOption finds an option for the target token: bidirectional substring
// first, then the yes/no synonym sets.
func matchOption(options []dom.RawOption, target string) (dom.RawOption, bool) {
	target = strings.ToLower(target)

	for _, opt := range options {
		text := strings.ToLower(opt.Text)
		if text == "" {
			continue
		}
		if strings.Contains(text, target) || strings.Contains(target, text) {
			return opt, true
		}
	}

	var synonyms []string
	switch target {
	case "yes":
		synonyms = yesSynonyms
	case "no":
		synonyms = noSynonyms
	default:
		return dom.RawOption{}, false
	}
	for _, opt := range options {
		text := strings.ToLower(opt.Text)
		for _, syn := range synonyms {
			if strings.Contains(text, syn) {
				return opt, true
			}
		}
	}
	return dom.RawOption{}, false
}

// -- Dropdowns --

var placeholderWords = []string{"select", "choose", "please"}

// ResolveDropdown picks the option index for a native select. Education
// questions prefer a bachelor's-level option, language questions a
// professional proficiency, anything else the first real option. Returns
// false when there is nothing worth selecting.
func (r *ChoiceResolver) ResolveDropdown(group dom.RawChoiceGroup) (int, bool) {
	question := strings.ToLower(group.Question)
	options := group.Options
	if len(options) <= 1 {
		return 0, false
	}

	start := 0
	firstText := strings.ToLower(options[0].Text)
	for _, w := range placeholderWords {
		if strings.Contains(firstText, w) {
			start = 1
			break
		}
	}

	prefer := func(words ...string) (int, bool) {
		for _, opt := range options[start:] {
			text := strings.ToLower(opt.Text)
			for _, w := range words {
				if strings.Contains(text, w) {
					return opt.Index, true
				}
			}
		}
		return 0, false
	}

	if strings.Contains(question, "education") || strings.Contains(question, "degree") {
		if idx, ok := prefer("bachelor", "bsc", "b.s"); ok {
			r.logger.Info("Selected education level", zap.Int("index", idx))
			return idx, true
		}
	}
	if strings.Contains(question, "english") || strings.Contains(question, "language") {
		if idx, ok := prefer("professional", "fluent", "advanced"); ok {
			r.logger.Info("Selected language proficiency", zap.Int("index", idx))
			return idx, true
		}
	}

	if start < len(options) {
		return options[start].Index, true
	}
	return 0, false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
