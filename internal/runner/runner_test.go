package runner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sherifabdallah/easyapply/internal/config"
	"github.com/sherifabdallah/easyapply/internal/dom/domtest"
	"github.com/sherifabdallah/easyapply/internal/flow"
	"github.com/sherifabdallah/easyapply/internal/form"
	"github.com/sherifabdallah/easyapply/internal/gate"
	"github.com/sherifabdallah/easyapply/internal/history"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

func testRunner(t *testing.T, page *domtest.FakePage) (*Runner, *history.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg := config.NewDefaultConfig()
	cfg.History.Path = filepath.Join(t.TempDir(), "applied_jobs.json")
	cfg.Credentials.Email = "user@example.com"
	cfg.Credentials.Password = "hunter2"
	cfg.Search.Keywords = "software engineer"
	cfg.Search.Location = "Cairo"

	store, err := history.Load(cfg.History.Path, logger)
	require.NoError(t, err)

	p := profile.Parse("name: A B\nskills: Python, SQL\n")
	resolver := form.NewResolver(p, nil, logger)
	choices := form.NewChoiceResolver(p, logger)
	filler := form.NewFiller(page, resolver, choices, p, 0, logger)
	fl := flow.New(page, filler, cfg.Flow, config.NetworkConfig{}, logger)
	g := gate.New(nil, p, logger)

	return New(page, g, fl, store, cfg, logger), store
}

func TestRunLogsInSearchesAndStopsWithoutResults(t *testing.T) {
	page := domtest.New()
	r, _ := testRunner(t, page)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, page.Navigations, 2)
	assert.Equal(t, "https://www.linkedin.com/login", page.Navigations[0])
	assert.Contains(t, page.Navigations[1], "https://www.linkedin.com/jobs/search/?")
	assert.Contains(t, page.Navigations[1], "f_AL=true")
	assert.Contains(t, page.Navigations[1], "keywords=software+engineer")
	assert.Contains(t, page.Navigations[1], "location=Cairo")

	assert.Equal(t, "user@example.com", page.TypedKeys["#username"])
	assert.Equal(t, "hunter2", page.TypedKeys["#password"])

	assert.Equal(t, 1, stats.Searched)
	assert.Equal(t, 0, stats.Applied)
}

func TestProcessCurrentJobSkipsRecordedJob(t *testing.T) {
	page := domtest.New()
	r, store := testRunner(t, page)
	require.NoError(t, store.Save(history.Record{JobID: "123", Status: history.StatusSubmitted}))

	page.URL = "https://www.linkedin.com/jobs/view/123/"
	page.Texts["h1.t-24"] = "Backend Engineer"

	var stats Stats
	applied := r.processCurrentJob(context.Background(), &stats)
	assert.False(t, applied)
	assert.Equal(t, 1, stats.Skipped)
}

func TestProcessCurrentJobGateRejection(t *testing.T) {
	page := domtest.New()
	r, _ := testRunner(t, page)

	page.URL = "https://www.linkedin.com/jobs/search/?currentJobId=55"
	page.Texts["h1.t-24"] = "Regional Sales Manager"
	page.Texts[".jobs-description"] = "Own the MENA sales pipeline."

	var stats Stats
	applied := r.processCurrentJob(context.Background(), &stats)
	assert.False(t, applied)
	assert.Equal(t, 1, stats.Skipped)
}

func TestProcessCurrentJobSkipsWithoutApplyControl(t *testing.T) {
	page := domtest.New()
	r, _ := testRunner(t, page)

	page.URL = "https://www.linkedin.com/jobs/search/?currentJobId=55"
	page.Texts["h1.t-24"] = "Backend Engineer"
	page.Texts[".jobs-description"] = "We need a backend developer."

	var stats Stats
	applied := r.processCurrentJob(context.Background(), &stats)
	assert.False(t, applied)
	assert.Equal(t, 1, stats.Skipped, "a job without the apply control is skipped, not failed")
}

func TestProcessCurrentJobSubmitsAndRecords(t *testing.T) {
	page := domtest.New()
	r, store := testRunner(t, page)

	page.URL = "https://www.linkedin.com/jobs/search/?currentJobId=55"
	page.Texts["h1.t-24"] = "Backend Engineer"
	page.Texts[".jobs-description"] = "We need a backend developer."
	page.Counts["button.jobs-apply-button"] = 1
	// The wizard is already satisfied: the flow sees the confirmation text
	// immediately.
	page.Text = "Your application was sent to Initech!"

	var stats Stats
	applied := r.processCurrentJob(context.Background(), &stats)
	assert.True(t, applied)
	assert.Equal(t, 1, stats.Applied)
	assert.True(t, store.Contains("55"))
}

func TestProcessCurrentJobRecordsDefinitiveFailure(t *testing.T) {
	page := domtest.New()
	r, store := testRunner(t, page)

	page.URL = "https://www.linkedin.com/jobs/search/?currentJobId=77"
	page.Texts["h1.t-24"] = "Backend Engineer"
	page.Texts[".jobs-description"] = "We need a backend developer."
	page.Counts["button.jobs-apply-button"] = 1
	// Modal open, no progression control: the flow fails definitively.
	page.ModalOpen = true
	page.ModalFound = true

	var stats Stats
	applied := r.processCurrentJob(context.Background(), &stats)
	assert.False(t, applied)
	assert.Equal(t, 1, stats.Errors)
	assert.True(t, store.Contains("77"), "a failed job is recorded so it is not retried forever")
}

func TestExtractJobID(t *testing.T) {
	page := domtest.New()
	r, _ := testRunner(t, page)

	page.URL = "https://www.linkedin.com/jobs/search/?currentJobId=456&f_AL=true"
	assert.Equal(t, "456", r.extractJobID(context.Background()))

	page.URL = "https://www.linkedin.com/jobs/view/789/"
	assert.Equal(t, "789", r.extractJobID(context.Background()))

	page.URL = "https://www.linkedin.com/feed/"
	assert.Equal(t, "", r.extractJobID(context.Background()))
}

func TestJobMetadataFallbacks(t *testing.T) {
	page := domtest.New()
	r, _ := testRunner(t, page)

	assert.Equal(t, "Unknown Position", r.extractJobTitle(context.Background()))
	assert.Equal(t, "Unknown Company", r.extractJobCompany(context.Background()))
	assert.Equal(t, "Unknown Position at Unknown Company",
		r.extractJobDescription(context.Background(), "Unknown Position", "Unknown Company"))
}
