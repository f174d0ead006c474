package form

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/profile"
)

// FillReport summarizes one fill pass for logging and auditing.
type FillReport struct {
	Filled     int
	Skipped    int
	Unresolved int
	Choices    int
	Repaired   int
	Attached   bool
}

// Filler runs one complete fill pass over the current step: simple fields,
// dropdowns, choice groups, a single validation-repair sweep, and a
// best-effort resume attachment.
type Filler struct {
	page        dom.Page
	resolver    *Resolver
	choices     *ChoiceResolver
	profile     *profile.Profile
	logger      *zap.Logger
	settleDelay time.Duration
}

func NewFiller(page dom.Page, resolver *Resolver, choices *ChoiceResolver, p *profile.Profile, settleDelay time.Duration, logger *zap.Logger) *Filler {
	return &Filler{
		page:        page,
		resolver:    resolver,
		choices:     choices,
		profile:     p,
		logger:      logger.Named("fill"),
		settleDelay: settleDelay,
	}
}

// FillOnce performs one fill pass. Fill failures on individual fields are
// absorbed; the pass always completes and reports what it did.
func (f *Filler) FillOnce(ctx context.Context) FillReport {
	var report FillReport

	f.fillFields(ctx, &report)
	f.fillDropdowns(ctx, &report)
	f.fillChoiceGroups(ctx, &report)
	f.repairValidationErrors(ctx, &report)
	f.attachResume(ctx, &report)

	f.logger.Info("Fill pass complete",
		zap.Int("filled", report.Filled),
		zap.Int("skipped", report.Skipped),
		zap.Int("unresolved", report.Unresolved),
		zap.Int("choices", report.Choices),
		zap.Int("repaired", report.Repaired),
		zap.Bool("resume_attached", report.Attached))
	return report
}

func (f *Filler) fillFields(ctx context.Context, report *FillReport) {
	fields, err := f.page.CollectFields(ctx)
	if err != nil {
		f.logger.Warn("Field enumeration failed", zap.Error(err))
		return
	}
	f.logger.Debug("Enumerated fields", zap.Int("count", len(fields)))

	for _, raw := range fields {
		// Upload controls are handled by attachResume.
		if raw.Type == "file" {
			continue
		}
		desc := Inspect(raw)

		// Never overwrite pre-filled data.
		if strings.TrimSpace(desc.CurrentValue) != "" {
			report.Skipped++
			continue
		}

		resolution := f.resolver.Resolve(ctx, desc)
		if !resolution.Resolved() {
			report.Unresolved++
			continue
		}

		if err := f.page.SetValueRef(ctx, desc.Ref, resolution.Value); err != nil {
			f.logger.Debug("Field write failed",
				zap.String("label", desc.Label), zap.Error(err))
			report.Unresolved++
			continue
		}
		report.Filled++
		f.logger.Info("Filled field",
			zap.String("label", truncate(desc.Label, 50)),
			zap.String("value", truncate(resolution.Value, 60)),
			zap.String("source", string(resolution.Source)))
		f.page.Settle(ctx, f.settleDelay)
	}
}

func (f *Filler) fillDropdowns(ctx context.Context, report *FillReport) {
	groups, err := f.page.CollectChoiceGroups(ctx)
	if err != nil {
		f.logger.Warn("Choice enumeration failed", zap.Error(err))
		return
	}

	for _, group := range groups {
		if group.Kind != dom.GroupSelect {
			continue
		}
		index, ok := f.choices.ResolveDropdown(group)
		if !ok {
			continue
		}
		if err := f.page.SelectOptionRef(ctx, group.Ref, index); err != nil {
			f.logger.Debug("Dropdown select failed",
				zap.String("question", truncate(group.Question, 60)), zap.Error(err))
			continue
		}
		report.Choices++
		f.page.Settle(ctx, f.settleDelay)
	}
}

func (f *Filler) fillChoiceGroups(ctx context.Context, report *FillReport) {
	// Re-enumerate: the dropdown writes above may have re-rendered the step.
	groups, err := f.page.CollectChoiceGroups(ctx)
	if err != nil {
		f.logger.Warn("Choice enumeration failed", zap.Error(err))
		return
	}

	for _, group := range groups {
		if group.Kind != dom.GroupFieldset {
			continue
		}
		selection := f.choices.ResolveGroup(ctx, group)
		switch selection.Outcome {
		case ChoiceKept, ChoiceUnresolved:
			continue
		case ChoiceSelected:
			if err := f.page.ClickRef(ctx, selection.Option.Ref); err != nil {
				f.logger.Debug("Choice click failed",
					zap.String("question", truncate(group.Question, 60)), zap.Error(err))
				continue
			}
			report.Choices++
			f.page.Settle(ctx, f.settleDelay)
		}
	}
}

// repairValidationErrors performs the single repair sweep: every field inside
// an error's containing group that is still empty gets re-resolved and
// re-written once.
func (f *Filler) repairValidationErrors(ctx context.Context, report *FillReport) {
	f.page.Settle(ctx, f.settleDelay)
	validationErrors, err := f.page.CollectValidationErrors(ctx)
	if err != nil || len(validationErrors) == 0 {
		return
	}
	f.logger.Warn("Validation errors present, attempting repair",
		zap.Int("count", len(validationErrors)))

	fields, err := f.page.CollectFields(ctx)
	if err != nil {
		return
	}
	byRef := make(map[string]dom.RawField, len(fields))
	for _, raw := range fields {
		byRef[raw.Ref] = raw
	}

	for _, ve := range validationErrors {
		f.logger.Warn("Validation error", zap.String("message", truncate(ve.Text, 120)))
		for _, ref := range ve.FieldRefs {
			raw, ok := byRef[ref]
			if !ok || raw.Type == "file" || strings.TrimSpace(raw.Value) != "" {
				continue
			}
			desc := Inspect(raw)
			resolution := f.resolver.Resolve(ctx, desc)
			if !resolution.Resolved() {
				continue
			}
			if err := f.page.SetValueRef(ctx, ref, resolution.Value); err != nil {
				continue
			}
			report.Repaired++
			f.logger.Info("Repaired field",
				zap.String("label", truncate(desc.Label, 40)),
				zap.String("value", truncate(resolution.Value, 60)))
			f.page.Settle(ctx, f.settleDelay)
		}
	}
}

// attachResume uploads the configured resume to the first file input, once
// per pass, only when the file actually exists.
func (f *Filler) attachResume(ctx context.Context, report *FillReport) {
	path, ok := f.profile.ResumePath()
	if !ok {
		return
	}
	fields, err := f.page.CollectFields(ctx)
	if err != nil {
		return
	}
	for _, raw := range fields {
		if raw.Type != "file" {
			continue
		}
		if err := f.page.AttachFileRef(ctx, raw.Ref, path); err != nil {
			f.logger.Debug("Resume attach failed", zap.Error(err))
			return
		}
		report.Attached = true
		f.logger.Info("Resume attached", zap.String("path", path))
		return
	}
}
