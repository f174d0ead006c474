package form

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/dom/domtest"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

func testFiller(t *testing.T, page dom.Page, doc string) *Filler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	p := profile.Parse(doc)
	resolver := NewResolver(p, nil, logger)
	choices := NewChoiceResolver(p, logger)
	return NewFiller(page, resolver, choices, p, 0, logger)
}

func TestFillOnceWritesResolvedFields(t *testing.T) {
	page := domtest.New()
	page.Fields = []dom.RawField{
		{Ref: "ea-1", Tag: "input", Type: "email", AriaLabel: "Email address"},
		{Ref: "ea-2", Tag: "input", Type: "tel", AriaLabel: "Phone number"},
	}

	filler := testFiller(t, page, "name: A B\nemail: a@b.dev\nphone: 123\n")
	report := filler.FillOnce(context.Background())

	assert.Equal(t, 2, report.Filled)
	assert.Equal(t, "a@b.dev", page.SetValues["ea-1"])
	assert.Equal(t, "123", page.SetValues["ea-2"])
}

func TestFillOnceNeverOverwritesPrefilledFields(t *testing.T) {
	page := domtest.New()
	page.Fields = []dom.RawField{
		{Ref: "ea-1", Tag: "input", Type: "email", AriaLabel: "Email address", Value: "existing@done.dev"},
	}

	filler := testFiller(t, page, "name: A B\nemail: a@b.dev\n")
	report := filler.FillOnce(context.Background())

	assert.Equal(t, 0, report.Filled)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, page.SetValues)
}

func TestFillOnceCountsUnresolvedFields(t *testing.T) {
	page := domtest.New()
	page.Fields = []dom.RawField{
		{Ref: "ea-1", Tag: "input", Type: "text", AriaLabel: "Favorite color"},
	}

	filler := testFiller(t, page, "name: A B\n")
	report := filler.FillOnce(context.Background())

	assert.Equal(t, 1, report.Unresolved)
	assert.Empty(t, page.SetValues)
}

func TestFillOnceSettlesChoiceGroups(t *testing.T) {
	page := domtest.New()
	page.Groups = []dom.RawChoiceGroup{
		{
			Ref: "ea-g1", Kind: dom.GroupFieldset,
			Question: "Will you require visa sponsorship?",
			Options: []dom.RawOption{
				{Ref: "ea-o1", Index: 0, Text: "Yes"},
				{Ref: "ea-o2", Index: 1, Text: "No"},
			},
		},
		{
			Ref: "ea-s1", Kind: dom.GroupSelect,
			Question: "Education level",
			Options: []dom.RawOption{
				{Index: 0, Text: "Select an option"},
				{Index: 1, Text: "Bachelor's Degree"},
			},
		},
	}

	filler := testFiller(t, page, "requires_sponsorship: no\n")
	report := filler.FillOnce(context.Background())

	assert.Equal(t, 2, report.Choices)
	assert.True(t, page.ClickedRef("ea-o2"), "should click the No label")
	assert.Equal(t, 1, page.Selected["ea-s1"])
}

func TestFillOnceRepairsValidationErrors(t *testing.T) {
	page := domtest.New()
	page.Fields = []dom.RawField{
		{Ref: "ea-1", Tag: "input", Type: "number", AriaLabel: "Years of Python experience"},
	}
	// The field write fails once with a stale ref, leaving it empty; the
	// repair sweep then targets it through the validation error.
	page.StaleRefs["ea-1"] = 1
	page.Errors = []dom.RawValidationError{
		{Text: "Please enter a valid answer", FieldRefs: []string{"ea-1"}},
	}

	filler := testFiller(t, page, "name: A B\npython_experience: 3\nyears_experience: 3\n")
	report := filler.FillOnce(context.Background())

	assert.Equal(t, 1, report.Repaired)
	assert.Equal(t, "3", page.SetValues["ea-1"])
}

func TestFillOnceAttachesResumeOnce(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(resume, []byte("pdf"), 0o644))

	page := domtest.New()
	page.Fields = []dom.RawField{
		{Ref: "ea-1", Tag: "input", Type: "file"},
	}

	filler := testFiller(t, page, "name: A B\nresume_path: "+resume+"\n")
	report := filler.FillOnce(context.Background())

	assert.True(t, report.Attached)
	assert.Equal(t, resume, page.Attached["ea-1"])
	// The upload control must not be treated as a text field.
	assert.Empty(t, page.SetValues)
}
