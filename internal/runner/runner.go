// Package runner owns the outer session loop: log in, search, walk the
// result list, and hand each eligible job to the application flow.
package runner

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/config"
	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/flow"
	"github.com/sherifabdallah/easyapply/internal/gate"
	"github.com/sherifabdallah/easyapply/internal/history"
)

const (
	loginURL      = "https://www.linkedin.com/login"
	searchBaseURL = "https://www.linkedin.com/jobs/search/"
)

// Stats are the session counters; monotonic within a run, reset per run.
type Stats struct {
	Searched int
	Applied  int
	Skipped  int
	Errors   int
}

// Runner drives one full session against a single page session.
type Runner struct {
	page   dom.Page
	gate   *gate.Gate
	flow   *flow.Flow
	store  *history.Store
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

func New(page dom.Page, g *gate.Gate, fl *flow.Flow, store *history.Store, cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{
		page:   page,
		gate:   g,
		flow:   fl,
		store:  store,
		cfg:    cfg,
		logger: logger.Named("runner"),
		now:    time.Now,
	}
}

// Run executes the whole session and returns the final counters. Individual
// job failures are counted, never propagated; the returned error covers only
// session-fatal conditions (login, search, cancellation).
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := r.login(ctx); err != nil {
		return stats, fmt.Errorf("login failed: %w", err)
	}
	if err := r.search(ctx); err != nil {
		return stats, fmt.Errorf("job search failed: %w", err)
	}

	maxApplications := r.cfg.Search.MaxApplications
	maxPerPage := r.cfg.Search.MaxJobsPerPage
	cardIndex := 0

	for stats.Applied < maxApplications {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		stats.Searched++
		if r.processCurrentJob(ctx, &stats) {
			r.logger.Info("Progress",
				zap.Int("applied", stats.Applied), zap.Int("target", maxApplications))
			r.page.Settle(ctx, r.cfg.Network.StepDelay)
		}

		if !r.clickNextJobCard(ctx, cardIndex) {
			r.logger.Info("End of visible results, moving to next page")
			if !r.clickNextPage(ctx) {
				r.logger.Info("No more jobs available")
				break
			}
			cardIndex = -1
		}
		cardIndex++

		if cardIndex >= maxPerPage {
			if !r.clickNextPage(ctx) {
				break
			}
			cardIndex = 0
		}

		r.page.Settle(ctx, r.cfg.Network.StepDelay)
	}

	r.logSummary(stats)
	return stats, nil
}

// -- Login and Search --

// login signs in with the configured credentials. A security checkpoint page
// gets a grace window for the operator to solve it manually.
func (r *Runner) login(ctx context.Context) error {
	r.logger.Info("Logging in")
	if err := r.page.Navigate(ctx, loginURL); err != nil {
		return err
	}
	r.page.Settle(ctx, r.cfg.Network.StepDelay)

	if err := r.page.TypeSelector(ctx, "#username", r.cfg.Credentials.Email); err != nil {
		return err
	}
	if err := r.page.TypeSelector(ctx, "#password", r.cfg.Credentials.Password); err != nil {
		return err
	}
	if err := r.page.PressEnter(ctx, "#password"); err != nil {
		return err
	}
	r.page.Settle(ctx, r.cfg.Network.StepDelay)

	if strings.Contains(r.page.Location(ctx), "check") {
		r.logger.Warn("Security checkpoint detected, waiting for manual resolution",
			zap.Duration("grace", r.cfg.Flow.CheckpointGrace))
		r.page.Settle(ctx, r.cfg.Flow.CheckpointGrace)
	}

	r.logger.Info("Login complete")
	return nil
}

// search opens the result list filtered to in-page applications.
func (r *Runner) search(ctx context.Context) error {
	q := url.Values{}
	q.Set("keywords", r.cfg.Search.Keywords)
	q.Set("f_AL", "true")
	if r.cfg.Search.Location != "" {
		q.Set("location", r.cfg.Search.Location)
	}
	searchURL := searchBaseURL + "?" + q.Encode()

	r.logger.Info("Searching jobs",
		zap.String("keywords", r.cfg.Search.Keywords),
		zap.String("location", r.cfg.Search.Location))
	if err := r.page.Navigate(ctx, searchURL); err != nil {
		return err
	}
	r.page.Settle(ctx, r.cfg.Network.StepDelay)
	return nil
}

// -- Per-Job Processing --

// processCurrentJob evaluates and applies to the currently selected job.
// Returns true only on a confirmed submitted application.
func (r *Runner) processCurrentJob(ctx context.Context, stats *Stats) bool {
	jobID := r.extractJobID(ctx)
	title := r.extractJobTitle(ctx)
	company := r.extractJobCompany(ctx)

	if jobID == "" || title == "" {
		return false
	}

	if r.store.Contains(jobID) {
		r.logger.Info("Already processed, skipping",
			zap.String("job_id", jobID), zap.String("title", title))
		stats.Skipped++
		return false
	}

	r.logger.Info("Checking job",
		zap.String("title", title), zap.String("company", company))

	description := r.extractJobDescription(ctx, title, company)
	apply, reason := r.gate.Decide(ctx, description)
	if !apply {
		r.logger.Info("Skipping job", zap.String("reason", reason))
		stats.Skipped++
		return false
	}
	r.logger.Info("Job matched", zap.String("reason", reason))

	if err := r.page.ClickSelector(ctx, "button.jobs-apply-button"); err != nil {
		r.logger.Info("No in-page apply control, skipping", zap.String("title", title))
		stats.Skipped++
		return false
	}
	r.page.Settle(ctx, r.cfg.Network.StepDelay)

	outcome, err := r.flow.Run(ctx)
	if err != nil {
		stats.Errors++
		return false
	}

	record := history.Record{
		JobID:     jobID,
		Title:     title,
		Company:   company,
		Timestamp: r.now().Format(time.RFC3339),
		URL:       r.page.Location(ctx),
	}

	if outcome.Completed {
		record.Status = history.StatusSubmitted
		if err := r.store.Save(record); err != nil {
			r.logger.Error("Failed to persist application record", zap.Error(err))
		}
		stats.Applied++
		r.logger.Info("Application submitted",
			zap.String("title", title), zap.Int("steps", outcome.Steps),
			zap.String("evidence", string(outcome.Evidence)))
		return true
	}

	// A definitive flow failure is recorded too, so the job is not retried
	// endlessly across runs.
	record.Status = history.StatusFailed
	if err := r.store.Save(record); err != nil {
		r.logger.Error("Failed to persist application record", zap.Error(err))
	}
	stats.Errors++
	r.logger.Warn("Application failed",
		zap.String("title", title), zap.String("reason", outcome.Reason))
	return false
}

// -- Job Metadata Extraction --

var jobIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`currentJobId=(\d+)`),
	regexp.MustCompile(`jobs/view/(\d+)`),
}

func (r *Runner) extractJobID(ctx context.Context) string {
	location := r.page.Location(ctx)
	for _, pattern := range jobIDPatterns {
		if m := pattern.FindStringSubmatch(location); m != nil {
			return m[1]
		}
	}
	return ""
}

func (r *Runner) extractJobTitle(ctx context.Context) string {
	if title, ok := r.page.TextFirst(ctx,
		".jobs-unified-top-card__job-title", "h1.t-24", "h2.t-24"); ok {
		return strings.TrimSpace(title)
	}
	return "Unknown Position"
}

func (r *Runner) extractJobCompany(ctx context.Context) string {
	if company, ok := r.page.TextFirst(ctx,
		".jobs-unified-top-card__company-name", "a.app-aware-link"); ok {
		return strings.TrimSpace(company)
	}
	return "Unknown Company"
}

func (r *Runner) extractJobDescription(ctx context.Context, title, company string) string {
	if desc, ok := r.page.TextFirst(ctx,
		".jobs-description", ".jobs-description-content"); ok {
		return desc
	}
	return fmt.Sprintf("%s at %s", title, company)
}

// -- Result-List Navigation --

var jobCardSelectors = []string{
	".scaffold-layout__list-item",
	"li.jobs-search-results__list-item",
}

func (r *Runner) clickNextJobCard(ctx context.Context, currentIndex int) bool {
	r.page.Settle(ctx, r.cfg.Network.SettleDelay)

	for _, selector := range jobCardSelectors {
		if r.page.Count(ctx, selector) <= currentIndex+1 {
			continue
		}
		if err := r.page.ClickNth(ctx, selector, currentIndex+1); err != nil {
			r.logger.Debug("Job card click failed", zap.Error(err))
			continue
		}
		r.page.Settle(ctx, r.cfg.Network.StepDelay)
		return true
	}
	return false
}

func (r *Runner) clickNextPage(ctx context.Context) bool {
	if err := r.page.ClickSelector(ctx, `button[aria-label="View next page"]`); err != nil {
		return false
	}
	r.page.Settle(ctx, r.cfg.Network.StepDelay)
	return true
}

func (r *Runner) logSummary(stats Stats) {
	r.logger.Info("Session complete",
		zap.Int("searched", stats.Searched),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors),
		zap.Int("history_size", r.store.Len()))
}
