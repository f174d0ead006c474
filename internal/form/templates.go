package form

import (
	"strings"

	"github.com/sherifabdallah/easyapply/internal/profile"
)

// genericAnswer returns a canned narrative answer for a descriptive question
// when no advisory text is available, selected by keyword over the label.
func genericAnswer(label string, p *profile.Profile) string {
	l := strings.ToLower(label)
	skills := strings.Join(p.TopSkills(3), ", ")

	switch {
	case strings.Contains(l, "why") && strings.Contains(l, "company"):
		return "I am excited about the opportunity to contribute my skills in " + skills +
			" to help drive innovation and growth."

	case strings.Contains(l, "why") && (strings.Contains(l, "position") || strings.Contains(l, "role")):
		years := p.YearsExperience()
		if years == "" {
			years = "2"
		}
		return "This role aligns perfectly with my " + years +
			" years of experience and passion for building impactful solutions."

	case strings.Contains(l, "strength") || strings.Contains(l, "strong"):
		return "My strengths include problem-solving, collaboration, and expertise in " + skills + "."

	case strings.Contains(l, "weakness"):
		return "I sometimes focus too deeply on perfecting details, but I've learned to " +
			"balance thoroughness with meeting deadlines."

	case strings.Contains(l, "achievement") || strings.Contains(l, "accomplish"):
		if work := p.WorkExperience(); work != "" {
			// The work-history line reads "Title at Company (dates) - highlight";
			// the highlight after the dash is the achievement.
			if _, highlight, ok := strings.Cut(work, "-"); ok {
				return strings.TrimSpace(highlight)
			}
			if len(work) > 150 {
				return work[:150]
			}
			return work
		}
		return "Successfully delivered multiple projects that improved system performance and user experience."

	case strings.Contains(l, "challenge"):
		return "I tackled complex technical challenges by breaking them into manageable parts, " +
			"collaborating with team members, and continuously learning new approaches."

	case strings.Contains(l, "goal"):
		title := p.CurrentTitle()
		if title == "" {
			title = "software engineer"
		}
		return "My goal is to continue growing as a " + title +
			" while contributing to meaningful projects that make a positive impact."

	case strings.Contains(l, "learn") && strings.Contains(l, "company"):
		return "I'm eager to learn from experienced team members, explore new technologies, " +
			"and contribute to innovative projects."
	}

	return "I am highly motivated and committed to delivering quality work while continuously improving my skills."
}
