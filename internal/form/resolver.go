package form

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/advisor"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

// Source identifies which cascade tier produced a value.
type Source string

const (
	SourceProfile         Source = "profile"
	SourceAIDescriptive   Source = "ai-descriptive"
	SourceGenericTemplate Source = "generic-template"
	SourceAIFallback      Source = "ai-fallback"
	SourceSafeDefault     Source = "safe-default"
	SourceNone            Source = "none"
)

// Resolution is the outcome of resolving one field. SourceNone means the
// field is left unfilled rather than guessed at.
type Resolution struct {
	Value  string
	Source Source
}

// Resolved reports whether the cascade produced a writable value.
func (r Resolution) Resolved() bool { return r.Source != SourceNone }

// Resolver maps a field descriptor to a value through the cascade. It never
// returns an error; every internal failure degrades to the next tier.
type Resolver struct {
	profile *profile.Profile
	advisor advisor.Advisor
	logger  *zap.Logger
	now     func() time.Time
}

// NewResolver builds a Resolver. adv may be nil, in which case the advisory
// tiers are skipped and templates/defaults carry the load.
func NewResolver(p *profile.Profile, adv advisor.Advisor, logger *zap.Logger) *Resolver {
	return &Resolver{
		profile: p,
		advisor: adv,
		logger:  logger.Named("resolver"),
		now:     time.Now,
	}
}

// Resolve runs the cascade for one field: profile-exact lookup, then
// descriptive generation or advisory fallback, then a safe default.
func (r *Resolver) Resolve(ctx context.Context, desc FieldDescriptor) Resolution {
	if value := r.fromProfile(desc); value != "" {
		r.logger.Debug("Resolved from profile",
			zap.String("label", desc.Label), zap.String("value", value))
		return Resolution{Value: value, Source: SourceProfile}
	}

	if IsDescriptive(desc) {
		if value := r.askDescriptive(ctx, desc); value != "" {
			return Resolution{Value: value, Source: SourceAIDescriptive}
		}
		value := genericAnswer(desc.Label, r.profile)
		r.logger.Debug("Resolved from template", zap.String("label", desc.Label))
		return Resolution{Value: value, Source: SourceGenericTemplate}
	}

	if value := r.askShort(ctx, desc); value != "" {
		return Resolution{Value: value, Source: SourceAIFallback}
	}

	if value := r.safeDefault(desc); value != "" {
		r.logger.Debug("Resolved from safe default",
			zap.String("label", desc.Label), zap.String("value", value))
		return Resolution{Value: value, Source: SourceSafeDefault}
	}

	r.logger.Warn("Field left unresolved", zap.String("label", desc.Label))
	return Resolution{Source: SourceNone}
}

// -- Tier 1: Profile-Exact --

// profileRule pairs a label predicate with a lookup. Rules are evaluated in
// order, first match wins.
type profileRule struct {
	match   func(label string) bool
	resolve func(r *Resolver, label string, c Constraints) string
}

func labelHasAny(words ...string) func(string) bool {
	return func(label string) bool {
		for _, w := range words {
			if strings.Contains(label, w) {
				return true
			}
		}
		return false
	}
}

var profileRules = []profileRule{
	{labelHasAny("email"), func(r *Resolver, _ string, _ Constraints) string {
		return r.profile.Email()
	}},
	{labelHasAny("phone", "mobile"), func(r *Resolver, _ string, _ Constraints) string {
		return r.profile.Phone()
	}},
	{labelHasAny("first name", "given name"), func(r *Resolver, _ string, _ Constraints) string {
		parts := strings.Fields(r.profile.Name())
		if len(parts) == 0 {
			return ""
		}
		return parts[0]
	}},
	{labelHasAny("last name", "family name", "surname"), func(r *Resolver, _ string, _ Constraints) string {
		parts := strings.Fields(r.profile.Name())
		if len(parts) < 2 {
			return ""
		}
		return strings.Join(parts[1:], " ")
	}},
	{func(label string) bool {
		return strings.Contains(label, "full name") &&
			!strings.Contains(label, "first") && !strings.Contains(label, "last")
	}, func(r *Resolver, _ string, _ Constraints) string {
		return r.profile.Name()
	}},
	{labelHasAny("linkedin"), func(r *Resolver, _ string, _ Constraints) string {
		return r.profile.LinkedIn()
	}},
	{labelHasAny("github"), func(r *Resolver, _ string, _ Constraints) string {
		return r.profile.GitHub()
	}},
	{labelHasAny("website", "portfolio"), func(r *Resolver, _ string, _ Constraints) string {
		return r.profile.Website()
	}},
	{func(label string) bool {
		return strings.Contains(label, "city") ||
			(strings.Contains(label, "location") && !strings.Contains(label, "relocate"))
	}, func(r *Resolver, _ string, _ Constraints) string {
		location := r.profile.Location()
		if location == "" {
			return ""
		}
		city, _, _ := strings.Cut(location, ",")
		return strings.TrimSpace(city)
	}},
	{func(label string) bool {
		return strings.Contains(label, "years") && strings.Contains(label, "experience")
	}, (*Resolver).resolveYears},
	{labelHasAny("salary", "compensation"), (*Resolver).resolveSalary},
	{func(label string) bool {
		return strings.Contains(label, "start") &&
			(strings.Contains(label, "date") || strings.Contains(label, "when") ||
				strings.Contains(label, "available"))
	}, (*Resolver).resolveAvailability},
	{labelHasAny("current company", "employer"), func(r *Resolver, _ string, _ Constraints) string {
		return currentEmployer(r.profile.WorkExperience())
	}},
}

func (r *Resolver) fromProfile(desc FieldDescriptor) string {
	label := strings.ToLower(desc.Label)
	for _, rule := range profileRules {
		if rule.match(label) {
			return rule.resolve(r, label, desc.Constraints)
		}
	}
	return ""
}

// techKeywords maps label substrings to per-technology profile attributes.
// Order matters: "next.js" must be tried before "next", ".net" before the
// bare names it is a substring of.
var techKeywords = []struct {
	keyword string
	attr    string
}{
	{"python", "python"},
	{"javascript", "javascript"},
	{"react", "react"},
	{"vue", "vue"},
	{"angular", "angular"},
	{"node", "node"},
	{"next.js", "nextjs"},
	{"next", "nextjs"},
	{".net", "dotnet"},
	{"dotnet", "dotnet"},
	{"asp.net", "aspnet"},
	{"java", "java"},
	{"c++", "cpp"},
	{"c#", "csharp"},
	{"sql", "sql"},
	{"aws", "aws"},
	{"docker", "docker"},
	{"kubernetes", "kubernetes"},
}

func (r *Resolver) resolveYears(label string, c Constraints) string {
	for _, tk := range techKeywords {
		if strings.Contains(label, tk.keyword) {
			return formatYears(r.profile.TechYears(tk.attr), c)
		}
	}
	return formatYears(r.profile.YearsExperience(), c)
}

func (r *Resolver) resolveSalary(label string, c Constraints) string {
	currency := "egp"
	if (strings.Contains(label, "usd") || strings.Contains(label, "$") || strings.Contains(label, "dollar")) &&
		!strings.Contains(label, "egp") && !strings.Contains(label, "egyptian") {
		currency = "usd"
	}
	salary := r.profile.ExpectedSalary(currency)
	r.logger.Info("Resolving salary",
		zap.String("currency", currency), zap.String("amount", salary))
	return formatNumber(salary, c)
}

var leadingNumber = regexp.MustCompile(`(\d+)`)

// resolveAvailability converts the profile's free-text notice period into a
// days-until-available number.
func (r *Resolver) resolveAvailability(_ string, _ Constraints) string {
	notice := strings.ToLower(r.profile.NoticePeriod())
	if strings.Contains(notice, "immediate") || strings.Contains(notice, "asap") {
		return "0"
	}
	match := leadingNumber.FindString(notice)
	if match == "" {
		return "30"
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return "30"
	}
	switch {
	case strings.Contains(notice, "week"):
		return strconv.Itoa(n * 7)
	case strings.Contains(notice, "month"):
		return strconv.Itoa(n * 30)
	default:
		return match
	}
}

// currentEmployer extracts the company from a free-text work-history line of
// the form "Title at Company (dates) - highlight".
func currentEmployer(workExperience string) string {
	_, after, ok := strings.Cut(workExperience, "at ")
	if !ok {
		return ""
	}
	company, _, _ := strings.Cut(after, "(")
	return strings.TrimSpace(company)
}

// -- Tiers 2 and 3: Advisory --

func (r *Resolver) profileContext() string {
	p := r.profile
	return fmt.Sprintf(`You are a professional job application assistant helping a candidate apply for jobs.

CANDIDATE PROFILE:
Name: %s
Current Title: %s
Experience: %s years
Skills: %s
Education: %s
Work Experience: %s

RESPONSE RULES:
- For numeric fields: Return ONLY the number (e.g., "2" or "2.5")
- For short text fields (name, email, etc.): Return exact value from profile
- For descriptive questions: Write professional, compelling 2-4 sentence answers using the profile data
- For yes/no: Return only "yes" or "no"
- For dates: Use realistic ISO format (YYYY-MM-DD) or relative time
- If unknown tech/skill: Return "0" for experience or "No experience yet, but eager to learn"
- Be honest, professional, and enthusiastic
- Match the tone to the field length (short fields = concise, long fields = detailed)`,
		orNA(p.Name()), orNA(p.CurrentTitle()), orNA(p.YearsExperience()),
		strings.Join(p.Skills(), ", "), orNA(p.Education()), orNA(p.WorkExperience()))
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

func (r *Resolver) askDescriptive(ctx context.Context, desc FieldDescriptor) string {
	if r.advisor == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", desc.Label)
	fmt.Fprintf(&b, "Field Type: %s (text area/long answer expected)\n", desc.Kind)
	if desc.Constraints.MinLength != nil {
		fmt.Fprintf(&b, "Minimum length: %d characters\n", *desc.Constraints.MinLength)
	}
	b.WriteString(`
Write a professional, engaging answer (2-4 sentences) that:
1. Uses specific details from the candidate's profile
2. Shows enthusiasm and fit for the role
3. Demonstrates relevant skills and experience
4. Sounds natural and authentic

Answer:`)

	response, err := r.advisor.Ask(ctx, b.String(), r.profileContext())
	if err != nil {
		r.logger.Warn("Descriptive generation failed",
			zap.String("label", desc.Label), zap.Error(err))
		return ""
	}
	return sanitizeAnswer(response)
}

func (r *Resolver) askShort(ctx context.Context, desc FieldDescriptor) string {
	if r.advisor == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", desc.Label)
	fmt.Fprintf(&b, "Field Type: %s\n", desc.Kind)
	if desc.Constraints.Min != nil || desc.Constraints.Max != nil {
		fmt.Fprintf(&b, "Constraints: Min=%s, Max=%s\n",
			floatAttr(desc.Constraints.Min), floatAttr(desc.Constraints.Max))
	}
	b.WriteString("\nProvide the appropriate answer. Return ONLY the value, no explanation.\nAnswer:")

	response, err := r.advisor.Ask(ctx, b.String(), r.profileContext())
	if err != nil {
		r.logger.Warn("Advisory fallback failed",
			zap.String("label", desc.Label), zap.Error(err))
		return ""
	}
	answer := sanitizeAnswer(response)
	if answer == "" {
		return ""
	}

	if desc.Kind == KindNumber {
		if _, err := strconv.ParseFloat(answer, 64); err != nil {
			r.logger.Warn("Advisory returned non-numeric value", zap.String("answer", answer))
			return "0"
		}
	}

	if max := desc.Constraints.MaxLength; max != nil && len(answer) > *max {
		if *max > 3 {
			answer = answer[:*max-3] + "..."
		} else {
			answer = answer[:*max]
		}
	}
	return answer
}

func floatAttr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func sanitizeAnswer(response string) string {
	answer := strings.TrimSpace(response)
	answer = strings.Trim(answer, `"'`)
	return strings.TrimSpace(answer)
}

// -- Tier 4: Safe Defaults --

func (r *Resolver) safeDefault(desc FieldDescriptor) string {
	label := strings.ToLower(desc.Label)

	if desc.Kind == KindNumber {
		if strings.Contains(label, "experience") || strings.Contains(label, "years") {
			return "0"
		}
		if desc.Constraints.Min != nil {
			return strconv.Itoa(int(*desc.Constraints.Min))
		}
		return "1"
	}

	if strings.Contains(label, "start") || strings.Contains(label, "available") || strings.Contains(label, "join") {
		if strings.Contains(label, "date") {
			return r.now().AddDate(0, 0, 30).Format("2006-01-02")
		}
		return "30"
	}

	return ""
}
