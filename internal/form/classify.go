package form

import "strings"

// descriptiveKeywords mark open-ended questions that expect a multi-sentence
// narrative answer.
var descriptiveKeywords = []string{
	"why", "describe", "tell us", "explain", "what makes",
	"how would", "your biggest", "your greatest",
	"achievement", "experience with", "motivate",
	"passion", "interest in", "fit for", "contribute",
	"challenge", "overcome", "learn", "strength",
	"weakness", "improve", "goal", "aspiration",
}

// descriptiveMinLength is the minimum-length bound above which a field is
// assumed to want narrative text rather than a short fact.
const descriptiveMinLength = 50

// IsDescriptive reports whether the field expects an open-ended narrative
// answer. Descriptive fields are routed to generated text instead of short
// factual lookups.
func IsDescriptive(desc FieldDescriptor) bool {
	if desc.Kind == KindLongText {
		return true
	}
	if desc.Constraints.MinLength != nil && *desc.Constraints.MinLength > descriptiveMinLength {
		return true
	}
	label := strings.ToLower(desc.Label)
	for _, kw := range descriptiveKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}
