package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

func choiceGroup(question string, optionTexts ...string) dom.RawChoiceGroup {
	g := dom.RawChoiceGroup{Ref: "ea-g1", Kind: dom.GroupFieldset, Question: question}
	for i, text := range optionTexts {
		g.Options = append(g.Options, dom.RawOption{
			Ref: "ea-o" + string(rune('1'+i)), Index: i, Text: text,
		})
	}
	return g
}

func testChoiceResolver(t *testing.T, doc string) *ChoiceResolver {
	t.Helper()
	return NewChoiceResolver(profile.Parse(doc), zaptest.NewLogger(t))
}

func TestResolveGroupKeepsExistingSelection(t *testing.T) {
	r := testChoiceResolver(t, "name: A B\n")

	group := choiceGroup("Are you legally authorized to work?", "Yes")
	group.Options[0].Selected = true

	sel := r.ResolveGroup(context.Background(), group)
	assert.Equal(t, ChoiceKept, sel.Outcome)
	assert.Equal(t, "Yes", sel.Option.Text)
}

func TestResolveGroupPolicyTable(t *testing.T) {
	testCases := []struct {
		name     string
		doc      string
		question string
		options  []string
		want     string
	}{
		{"commute from profile", "willing_to_commute: yes\n",
			"Are you able to commute to this office?", []string{"Yes", "No"}, "Yes"},
		{"sponsorship from profile", "requires_sponsorship: no\n",
			"Will you require visa sponsorship?", []string{"Yes", "No"}, "No"},
		{"relocation from profile", "willing_to_relocate: no\n",
			"Are you open to relocating?", []string{"Yes", "No"}, "No"},
		{"remote preference", "remote_preference: hybrid\n",
			"What is your remote work preference?", []string{"On-site", "Hybrid", "Remote"}, "Hybrid"},
		{"clearance is declined", "name: A B\n",
			"Do you hold an active security clearance?", []string{"Yes", "No"}, "No"},
		{"background check accepted", "name: A B\n",
			"Are you willing to undergo a background check?", []string{"Yes", "No"}, "Yes"},
		{"drug test accepted", "name: A B\n",
			"Will you pass a drug test?", []string{"Yes", "No"}, "Yes"},
		{"legal age", "name: A B\n",
			"Are you 18 years or older?", []string{"Yes", "No"}, "Yes"},
		{"eligible to work", "name: A B\n",
			"Are you eligible to work in this country?", []string{"Yes", "No"}, "Yes"},
		{"previously applied", "name: A B\n",
			"Have you previously applied to this company?", []string{"Yes", "No"}, "No"},
		{"referral", "name: A B\n",
			"Do you know anyone who works here?", []string{"Yes", "No"}, "No"},
		{"urgent start", "name: A B\n",
			"Can you start immediately?", []string{"Yes", "No"}, "Yes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := testChoiceResolver(t, tc.doc)
			sel := r.ResolveGroup(context.Background(), choiceGroup(tc.question, tc.options...))
			require.Equal(t, ChoiceSelected, sel.Outcome)
			assert.Equal(t, tc.want, sel.Option.Text)
		})
	}
}

func TestResolveGroupSynonymBroadening(t *testing.T) {
	r := testChoiceResolver(t, "requires_sponsorship: no\n")

	sel := r.ResolveGroup(context.Background(), choiceGroup(
		"Will you require visa sponsorship?",
		"I will require sponsorship", "I do not require sponsorship"))
	require.Equal(t, ChoiceSelected, sel.Outcome)
	assert.Equal(t, "I do not require sponsorship", sel.Option.Text)

	sel = r.ResolveGroup(context.Background(), choiceGroup(
		"Are you able to commute to this office?",
		"I am able to", "Unfortunately I cannot"))
	require.Equal(t, ChoiceSelected, sel.Outcome)
	assert.Equal(t, "I am able to", sel.Option.Text)
}

func TestResolveGroupFirstOptionFallback(t *testing.T) {
	r := testChoiceResolver(t, "name: A B\n")

	sel := r.ResolveGroup(context.Background(), choiceGroup(
		"Which team interests you most?", "Platform", "Product", "Infrastructure"))
	require.Equal(t, ChoiceSelected, sel.Outcome)
	assert.Equal(t, "Platform", sel.Option.Text)
}

// -- Dropdowns --

func dropdown(question string, optionTexts ...string) dom.RawChoiceGroup {
	g := dom.RawChoiceGroup{Ref: "ea-s1", Kind: dom.GroupSelect, Question: question}
	for i, text := range optionTexts {
		g.Options = append(g.Options, dom.RawOption{Index: i, Text: text})
	}
	return g
}

func TestResolveDropdown(t *testing.T) {
	r := testChoiceResolver(t, "name: A B\n")

	t.Run("education prefers bachelor", func(t *testing.T) {
		idx, ok := r.ResolveDropdown(dropdown("Education level",
			"Select an option", "High school", "Bachelor's Degree", "Master's Degree"))
		require.True(t, ok)
		assert.Equal(t, 2, idx)
	})

	t.Run("language prefers professional", func(t *testing.T) {
		idx, ok := r.ResolveDropdown(dropdown("English proficiency",
			"Please choose", "Elementary", "Professional working proficiency"))
		require.True(t, ok)
		assert.Equal(t, 2, idx)
	})

	t.Run("skips placeholder", func(t *testing.T) {
		idx, ok := r.ResolveDropdown(dropdown("Country code",
			"Select one", "+20", "+44"))
		require.True(t, ok)
		assert.Equal(t, 1, idx)
	})

	t.Run("no placeholder starts at zero", func(t *testing.T) {
		idx, ok := r.ResolveDropdown(dropdown("Office preference", "Cairo", "Alexandria"))
		require.True(t, ok)
		assert.Equal(t, 0, idx)
	})

	t.Run("single option is left alone", func(t *testing.T) {
		_, ok := r.ResolveDropdown(dropdown("Placeholder only", "Select an option"))
		assert.False(t, ok)
	})
}
