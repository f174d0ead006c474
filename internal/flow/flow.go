// Package flow drives one application through its multi-step wizard: fill the
// current step, advance, detect completion or failure, bounded by a hard step
// limit so a misbehaving form can never loop forever.
package flow

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/config"
	"github.com/sherifabdallah/easyapply/internal/dom"
	"github.com/sherifabdallah/easyapply/internal/form"
)

// State is an explicit flow state so the transition logic is testable
// without a live document.
type State string

const (
	StateAwaitingStep State = "awaiting-step"
	StateFilling      State = "filling"
	StateAdvancing    State = "advancing"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Evidence identifies which terminal signal fired. Modal absence is the
// weakest signal (also true on a load failure), so it is only honored when no
// progression control is in view either.
type Evidence string

const (
	EvidenceSuccessPhrase Evidence = "success-phrase"
	EvidenceDoneButton    Evidence = "done-button"
	EvidenceModalAbsent   Evidence = "modal-absent"
)

// successPhrases confirm a submitted application from page text.
var successPhrases = []string{
	"application sent",
	"application submitted",
	"successfully applied",
	"your application was sent",
	"application was sent to",
}

// Outcome is the flow's final report.
type Outcome struct {
	Completed bool
	Steps     int
	Evidence  Evidence
	Reason    string
}

// Flow is the step state machine for a single application.
type Flow struct {
	page   dom.Page
	filler *form.Filler
	cfg    config.FlowConfig
	net    config.NetworkConfig
	logger *zap.Logger
}

func New(page dom.Page, filler *form.Filler, cfg config.FlowConfig, net config.NetworkConfig, logger *zap.Logger) *Flow {
	return &Flow{
		page:   page,
		filler: filler,
		cfg:    cfg,
		net:    net,
		logger: logger.Named("flow"),
	}
}

// Run executes the state machine until a terminal state. Failures are
// reported in the Outcome, never raised; the one error case is caller
// cancellation.
func (f *Flow) Run(ctx context.Context) (Outcome, error) {
	state := StateAwaitingStep
	steps := 0

	for {
		if err := ctx.Err(); err != nil {
			f.dismiss(ctx)
			return Outcome{Steps: steps, Reason: "cancelled"}, err
		}

		switch state {
		case StateAwaitingStep:
			if steps >= f.cfg.MaxSteps {
				f.logger.Warn("Step bound exhausted", zap.Int("steps", steps))
				f.dismiss(ctx)
				return Outcome{Steps: steps, Reason: "step bound exhausted"}, nil
			}
			if evidence, done := f.terminal(ctx); done {
				f.logger.Info("Application complete",
					zap.Int("steps", steps), zap.String("evidence", string(evidence)))
				return Outcome{Completed: true, Steps: steps, Evidence: evidence}, nil
			}
			f.transition(state, StateFilling, steps)
			state = StateFilling

		case StateFilling:
			steps++
			// Fill failures are non-fatal; the advance attempt reveals
			// whether required fields remain unmet.
			f.filler.FillOnce(ctx)
			f.page.Settle(ctx, f.net.SettleDelay)
			f.transition(state, StateAdvancing, steps)
			state = StateAdvancing

		case StateAdvancing:
			if reason, ok := f.advance(ctx); !ok {
				f.logger.Warn("Advance failed",
					zap.Int("step", steps), zap.String("reason", reason))
				f.dismiss(ctx)
				return Outcome{Steps: steps, Reason: reason}, nil
			}
			f.page.Settle(ctx, f.net.StepDelay)
			f.transition(state, StateAwaitingStep, steps)
			state = StateAwaitingStep
		}
	}
}

func (f *Flow) transition(from, to State, step int) {
	f.logger.Debug("State transition",
		zap.String("from", string(from)), zap.String("to", string(to)), zap.Int("step", step))
}

// -- Terminal Detection --

// terminal checks the completion signals in confidence order: success phrase
// in the page text, a Done control, and only then modal absence.
func (f *Flow) terminal(ctx context.Context) (Evidence, bool) {
	if text, ok := f.page.FullText(ctx); ok {
		lower := strings.ToLower(text)
		for _, phrase := range successPhrases {
			if strings.Contains(lower, phrase) {
				f.logger.Info("Success phrase found", zap.String("phrase", phrase))
				f.clickByAria(ctx, "Dismiss")
				return EvidenceSuccessPhrase, true
			}
		}
	}

	buttons, err := f.page.CollectButtons(ctx)
	if err != nil {
		f.logger.Debug("Button enumeration failed during terminal check", zap.Error(err))
		return "", false
	}

	for _, b := range buttons {
		if strings.Contains(b.AriaLabel, "Done") {
			f.logger.Info("Done control found")
			if err := f.page.ClickRef(ctx, b.Ref); err == nil {
				f.page.Settle(ctx, f.net.SettleDelay)
			}
			return EvidenceDoneButton, true
		}
	}

	if visible, found := f.page.ModalVisible(ctx); !found || !visible {
		// Weak evidence: honor it only when there is also no progression
		// control left to click.
		if _, ok := pickAdvanceButton(buttons); !ok {
			f.logger.Info("Modal gone and no progression control in view")
			return EvidenceModalAbsent, true
		}
	}
	return "", false
}

// -- Advancing --

// advance activates the step's progression control, retrying a bounded number
// of times when the document re-renders between lookup and click. The
// returned reason describes the failure when ok is false.
func (f *Flow) advance(ctx context.Context) (string, bool) {
	retries := f.cfg.ClickRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 1; attempt <= retries; attempt++ {
		f.page.Settle(ctx, f.net.SettleDelay)

		buttons, err := f.page.CollectButtons(ctx)
		if err != nil {
			f.logger.Debug("Button enumeration failed",
				zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		button, ok := pickAdvanceButton(buttons)
		if !ok {
			return "no progression control found", false
		}
		if button.Disabled {
			// Required data is still missing; repair already ran once.
			return "progression control disabled", false
		}

		if err := f.page.ScrollIntoViewRef(ctx, button.Ref); err != nil {
			f.logger.Debug("Scroll failed", zap.Error(err))
		}
		f.page.Settle(ctx, f.net.SettleDelay)

		err = f.page.ClickRef(ctx, button.Ref)
		if err == nil {
			f.logger.Info("Advanced step",
				zap.String("button", buttonName(button)), zap.Int("attempt", attempt))
			return "", true
		}
		if errors.Is(err, dom.ErrStale) && attempt < retries {
			f.logger.Debug("Stale control, retrying", zap.Int("attempt", attempt))
			continue
		}
		f.logger.Warn("Progression click failed", zap.Error(err))
		return "progression click failed", false
	}
	return "progression control stayed stale", false
}

// pickAdvanceButton applies the progression-control priority: explicit submit,
// then review, then next/continue, then any visible modal button whose text
// suggests progression.
func pickAdvanceButton(buttons []dom.RawButton) (dom.RawButton, bool) {
	ariaPriorities := [][]string{
		{"Submit application"},
		{"Review"},
		{"Continue to next step", "Next"},
	}
	for _, needles := range ariaPriorities {
		for _, b := range buttons {
			for _, needle := range needles {
				if strings.Contains(b.AriaLabel, needle) {
					return b, true
				}
			}
		}
	}

	for _, b := range buttons {
		if !b.Visible || !b.InModal {
			continue
		}
		text := strings.ToLower(b.Text)
		for _, word := range []string{"submit", "review", "next", "continue"} {
			if strings.Contains(text, word) {
				return b, true
			}
		}
	}
	return dom.RawButton{}, false
}

func buttonName(b dom.RawButton) string {
	if b.AriaLabel != "" {
		return b.AriaLabel
	}
	return b.Text
}

// -- Cleanup --

// dismiss closes an abandoned wizard: Dismiss, then the discard confirmation
// if one pops up. Best effort only.
func (f *Flow) dismiss(ctx context.Context) {
	if !f.clickByAria(ctx, "Dismiss") {
		return
	}
	f.page.Settle(ctx, f.net.SettleDelay)
	buttons, err := f.page.CollectButtons(ctx)
	if err != nil {
		return
	}
	for _, b := range buttons {
		if strings.Contains(strings.ToLower(b.Text), "discard") {
			_ = f.page.ClickRef(ctx, b.Ref)
			return
		}
	}
}

func (f *Flow) clickByAria(ctx context.Context, needle string) bool {
	buttons, err := f.page.CollectButtons(ctx)
	if err != nil {
		return false
	}
	for _, b := range buttons {
		if strings.Contains(b.AriaLabel, needle) {
			return f.page.ClickRef(ctx, b.Ref) == nil
		}
	}
	return false
}
