// Package profile loads the candidate profile document.
//
// The profile is a line-oriented "key: value" text file with one multi-line
// list field (skills). It is read once per run and treated as immutable
// afterwards. Missing attributes resolve to an empty string or a safe
// default, never an error.
package profile

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mitchellh/go-homedir"
	"go.uber.org/zap"
)

// Technologies lists the per-technology experience attributes the profile may
// carry, in the order field labels are matched against them.
var Technologies = []string{
	"python", "javascript", "react", "vue", "angular", "node", "nextjs",
	"dotnet", "aspnet", "java", "cpp", "csharp", "sql", "aws", "docker",
	"kubernetes",
}

// defaults fill attributes the document omits so downstream policy decisions
// always have an answer to work from.
var defaults = map[string]string{
	"years_experience":       "0",
	"notice_period":          "1 month",
	"expected_salary_in_usd": "700",
	"expected_salary_in_egp": "30000",
	"willing_to_relocate":    "yes",
	"requires_sponsorship":   "no",
	"willing_to_commute":     "yes",
	"remote_preference":      "hybrid",
}

// Profile is the immutable candidate profile for a run.
type Profile struct {
	fields map[string]string
	skills []string
}

// Load reads and parses the profile document at path.
func Load(path string, logger *zap.Logger) (*Profile, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve profile path '%s': %w", path, err)
	}

	content, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile document '%s': %w", expanded, err)
	}

	p := Parse(string(content))
	logger.Info("Profile loaded",
		zap.String("name", p.Name()),
		zap.Int("skills", len(p.Skills())),
		zap.String("path", expanded),
	)
	return p, nil
}

// Parse builds a Profile from raw document text.
func Parse(content string) *Profile {
	p := &Profile{fields: make(map[string]string)}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		if key == "" || value == "" {
			continue
		}
		if key == "skills" {
			p.skills = splitList(value)
			continue
		}
		p.fields[key] = value
	}

	for key, def := range defaults {
		if p.fields[key] == "" {
			p.fields[key] = def
		}
	}
	return p
}

var listSeparator = regexp.MustCompile(`[,\n]`)

func splitList(value string) []string {
	var items []string
	for _, item := range listSeparator.Split(value, -1) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Get returns the raw attribute value, or an empty string when absent.
func (p *Profile) Get(key string) string {
	return p.fields[strings.ToLower(key)]
}

// Skills returns the candidate's skill set in document order.
func (p *Profile) Skills() []string {
	return p.skills
}

// TopSkills returns up to n skills for prompt and template contexts, with a
// generic stand-in when the profile lists none.
func (p *Profile) TopSkills(n int) []string {
	if len(p.skills) == 0 {
		return []string{"software development"}
	}
	if len(p.skills) > n {
		return p.skills[:n]
	}
	return p.skills
}

func (p *Profile) Name() string         { return p.Get("name") }
func (p *Profile) Email() string        { return p.Get("email") }
func (p *Profile) Phone() string        { return p.Get("phone") }
func (p *Profile) Location() string     { return p.Get("location") }
func (p *Profile) CurrentTitle() string { return p.Get("current_title") }
func (p *Profile) LinkedIn() string     { return p.Get("linkedin") }
func (p *Profile) GitHub() string       { return p.Get("github") }
func (p *Profile) Website() string      { return p.Get("website") }
func (p *Profile) Education() string    { return p.Get("education") }

// WorkExperience is the free-text work history line, e.g.
// "Backend Engineer at Initech (2021-present) - cut query latency in half".
func (p *Profile) WorkExperience() string { return p.Get("work_experience") }

// YearsExperience is the general years-of-experience attribute.
func (p *Profile) YearsExperience() string { return p.Get("years_experience") }

// TechYears returns the per-technology years attribute (e.g. tech "python"
// reads "python_experience"), falling back to the general years attribute.
func (p *Profile) TechYears(tech string) string {
	if v := p.Get(tech + "_experience"); v != "" {
		return v
	}
	return p.YearsExperience()
}

// ExpectedSalary returns the expected salary for a currency code ("usd" or
// "egp").
func (p *Profile) ExpectedSalary(currency string) string {
	return p.Get("expected_salary_in_" + strings.ToLower(currency))
}

// NoticePeriod is the free-text notice period ("immediate", "2 weeks", ...).
func (p *Profile) NoticePeriod() string { return p.Get("notice_period") }

func (p *Profile) WillingToRelocate() bool { return answersYes(p.Get("willing_to_relocate")) }
func (p *Profile) RequiresSponsorship() bool {
	return answersYes(p.Get("requires_sponsorship"))
}
func (p *Profile) WillingToCommute() bool { return answersYes(p.Get("willing_to_commute")) }

// RemotePreference is the raw preference token ("remote", "hybrid", "onsite").
func (p *Profile) RemotePreference() string {
	return strings.ToLower(p.Get("remote_preference"))
}

// ResumePath returns the configured resume path expanded to an absolute home
// path, and whether the file exists on disk.
func (p *Profile) ResumePath() (string, bool) {
	raw := p.Get("resume_path")
	if raw == "" {
		return "", false
	}
	expanded, err := homedir.Expand(raw)
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(expanded); err != nil {
		return "", false
	}
	return expanded, true
}

func answersYes(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "yes")
}
