package dom

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sherifabdallah/easyapply/internal/config"
	"github.com/sherifabdallah/easyapply/internal/observability"
)

// -- Embedded Collectors --

//go:embed js/collect_fields.js
var collectFieldsJS string

//go:embed js/collect_choices.js
var collectChoicesJS string

//go:embed js/collect_buttons.js
var collectButtonsJS string

//go:embed js/collect_errors.js
var collectErrorsJS string

var _ Page = (*Session)(nil)

// Session is the chromedp-backed implementation of Page. It owns one browser
// tab for its whole lifetime; Close tears down the tab and the browser.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	net     config.NetworkConfig
	logger  *zap.Logger
}

// NewSession launches a browser and returns a Session bound to a fresh tab.
// The returned Session must be Closed by the caller.
func NewSession(parent context.Context, browserCfg config.BrowserConfig, netCfg config.NetworkConfig) (*Session, error) {
	logger := observability.GetLogger().Named("dom")

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", browserCfg.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("enable-automation", false),
	)
	for _, arg := range browserCfg.Args {
		if name, value, ok := strings.Cut(strings.TrimPrefix(arg, "--"), "="); ok {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(strings.TrimPrefix(arg, "--"), true))
		}
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)

	ctxOpts := []chromedp.ContextOption{}
	if browserCfg.Debug {
		ctxOpts = append(ctxOpts, chromedp.WithDebugf(logger.Sugar().Debugf))
	}
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, ctxOpts...)

	// Start the browser process eagerly so launch failures surface here
	// instead of on the first navigation, and hide the automation marker
	// before any document script runs.
	err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(
			`Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`,
		).Do(ctx)
		return err
	}))
	if err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &Session{
		ctx:     tabCtx,
		cancels: []context.CancelFunc{cancelTab, cancelAlloc},
		net:     netCfg,
		logger:  logger,
	}, nil
}

// Close shuts down the tab and the browser process.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// run executes actions against the session tab, bounded by both the caller's
// context and the configured action timeout.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := mergeContext(s.ctx, ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}
	return chromedp.Run(runCtx, actions...)
}

// mergeContext derives from the tab context (chromedp requires its own chain)
// while honoring cancellation of the caller's context.
func mergeContext(tab, caller context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(tab)
	if caller != nil && caller.Done() != nil {
		stop := context.AfterFunc(caller, cancel)
		return merged, func() { stop(); cancel() }
	}
	return merged, cancel
}

// -- Navigation and Generic Reads --

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating", zap.String("url", url))
	err := s.run(ctx, s.net.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func (s *Session) Location(ctx context.Context) string {
	var url string
	if err := s.run(ctx, s.net.ActionTimeout, chromedp.Location(&url)); err != nil {
		s.logger.Debug("Location read failed", zap.Error(err))
		return ""
	}
	return url
}

func (s *Session) FullText(ctx context.Context) (string, bool) {
	var text string
	err := s.run(ctx, s.net.ActionTimeout,
		chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text),
	)
	if err != nil {
		s.logger.Debug("Full text read failed", zap.Error(err))
		return "", false
	}
	return text, true
}

func (s *Session) TextFirst(ctx context.Context, selectors ...string) (string, bool) {
	script := fmt.Sprintf(`(() => {
		for (const sel of %s) {
			const el = document.querySelector(sel);
			if (el) { return (el.textContent || '').trim(); }
		}
		return null;
	})()`, mustQuote(selectors))
	var text *string
	if err := s.run(ctx, s.net.ActionTimeout, chromedp.Evaluate(script, &text)); err != nil {
		s.logger.Debug("Text read failed", zap.Error(err))
		return "", false
	}
	if text == nil {
		return "", false
	}
	return *text, true
}

// -- Selector-Addressed Interaction --

func (s *Session) ClickSelector(ctx context.Context, selector string) error {
	err := s.run(ctx, s.net.ActionTimeout,
		chromedp.ScrollIntoView(selector, chromedp.ByQuery),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("click on %q failed: %w", selector, err)
	}
	return nil
}

func (s *Session) TypeSelector(ctx context.Context, selector, text string) error {
	err := s.run(ctx, s.net.ActionTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, text, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("type into %q failed: %w", selector, err)
	}
	return nil
}

func (s *Session) PressEnter(ctx context.Context, selector string) error {
	err := s.run(ctx, s.net.ActionTimeout,
		chromedp.Focus(selector, chromedp.ByQuery),
		chromedp.KeyEvent(kb.Enter),
	)
	if err != nil {
		return fmt.Errorf("enter on %q failed: %w", selector, err)
	}
	return nil
}

func (s *Session) Count(ctx context.Context, selector string) int {
	script := fmt.Sprintf(`document.querySelectorAll(%s).length`, mustQuote(selector))
	var n int
	if err := s.run(ctx, s.net.ActionTimeout, chromedp.Evaluate(script, &n)); err != nil {
		s.logger.Debug("Count failed", zap.String("selector", selector), zap.Error(err))
		return 0
	}
	return n
}

func (s *Session) ClickNth(ctx context.Context, selector string, index int) error {
	script := fmt.Sprintf(`(() => {
		const els = document.querySelectorAll(%s);
		if (els.length <= %d) { return false; }
		els[%d].scrollIntoView({block: 'center'});
		els[%d].click();
		return true;
	})()`, mustQuote(selector), index, index, index)
	var ok bool
	if err := s.run(ctx, s.net.ActionTimeout, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("click on %q[%d] failed: %w", selector, index, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// -- Structured Enumeration --

func (s *Session) CollectFields(ctx context.Context) ([]RawField, error) {
	var fields []RawField
	if err := s.evaluateInto(ctx, collectFieldsJS, &fields); err != nil {
		return nil, fmt.Errorf("field enumeration failed: %w", err)
	}
	return fields, nil
}

func (s *Session) CollectChoiceGroups(ctx context.Context) ([]RawChoiceGroup, error) {
	var groups []RawChoiceGroup
	if err := s.evaluateInto(ctx, collectChoicesJS, &groups); err != nil {
		return nil, fmt.Errorf("choice group enumeration failed: %w", err)
	}
	return groups, nil
}

func (s *Session) CollectButtons(ctx context.Context) ([]RawButton, error) {
	var buttons []RawButton
	if err := s.evaluateInto(ctx, collectButtonsJS, &buttons); err != nil {
		return nil, fmt.Errorf("button enumeration failed: %w", err)
	}
	return buttons, nil
}

func (s *Session) CollectValidationErrors(ctx context.Context) ([]RawValidationError, error) {
	var errs []RawValidationError
	if err := s.evaluateInto(ctx, collectErrorsJS, &errs); err != nil {
		return nil, fmt.Errorf("validation error enumeration failed: %w", err)
	}
	return errs, nil
}

func (s *Session) ModalVisible(ctx context.Context) (bool, bool) {
	script := `(() => {
		const modal = document.querySelector('.jobs-easy-apply-modal, .artdeco-modal');
		if (!modal) { return {found: false, visible: false}; }
		const rect = modal.getBoundingClientRect();
		return {found: true, visible: rect.width > 0 && rect.height > 0};
	})()`
	var out struct {
		Found   bool `json:"found"`
		Visible bool `json:"visible"`
	}
	if err := s.evaluateInto(ctx, script, &out); err != nil {
		s.logger.Debug("Modal probe failed", zap.Error(err))
		return false, false
	}
	return out.Visible, out.Found
}

// evaluateInto runs script and unmarshals its JSON result into out. The
// collectors return plain arrays/objects, so chromedp's remote object
// serialization handles the whole round trip.
func (s *Session) evaluateInto(ctx context.Context, script string, out any) error {
	return s.run(ctx, s.net.ActionTimeout, chromedp.Evaluate(script, out))
}

// -- Ref-Addressed Mutations --

// refSelector builds the attribute selector for a previously tagged element.
func refSelector(ref string) string {
	return fmt.Sprintf(`[data-ea-ref=%s]`, mustQuote(ref))
}

func (s *Session) SetValueRef(ctx context.Context, ref, value string) error {
	// The target forms are React-controlled, so the value has to go through
	// the native setter and be followed by input/change events; a bare
	// attribute write is reverted on the next render.
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return false; }
		const proto = el.tagName === 'TEXTAREA'
			? window.HTMLTextAreaElement.prototype
			: window.HTMLInputElement.prototype;
		const setter = Object.getOwnPropertyDescriptor(proto, 'value').set;
		setter.call(el, %s);
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		el.blur();
		return true;
	})()`, mustQuote(refSelector(ref)), mustQuote(value))
	return s.mutateRef(ctx, ref, script)
}

func (s *Session) ClickRef(ctx context.Context, ref string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return false; }
		el.scrollIntoView({block: 'center'});
		el.click();
		return true;
	})()`, mustQuote(refSelector(ref)))
	return s.mutateRef(ctx, ref, script)
}

func (s *Session) SelectOptionRef(ctx context.Context, ref string, index int) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el || el.options.length <= %d) { return false; }
		el.selectedIndex = %d;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, mustQuote(refSelector(ref)), index, index)
	return s.mutateRef(ctx, ref, script)
}

func (s *Session) AttachFileRef(ctx context.Context, ref, path string) error {
	selector := refSelector(ref)
	var n int
	if err := s.run(ctx, s.net.ActionTimeout,
		chromedp.Evaluate(fmt.Sprintf(`document.querySelectorAll(%s).length`, mustQuote(selector)), &n),
	); err != nil {
		return fmt.Errorf("upload probe for ref %s failed: %w", ref, err)
	}
	if n == 0 {
		return ErrStale
	}
	err := s.run(ctx, s.net.ActionTimeout,
		chromedp.SetUploadFiles(selector, []string{path}, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("file attach for ref %s failed: %w", ref, err)
	}
	return nil
}

func (s *Session) ScrollIntoViewRef(ctx context.Context, ref string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return false; }
		el.scrollIntoView({block: 'center'});
		return true;
	})()`, mustQuote(refSelector(ref)))
	return s.mutateRef(ctx, ref, script)
}

// mutateRef runs a ref-addressed mutation script that returns false when the
// ref no longer resolves.
func (s *Session) mutateRef(ctx context.Context, ref, script string) error {
	var ok bool
	if err := s.run(ctx, s.net.ActionTimeout, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("mutation on ref %s failed: %w", ref, err)
	}
	if !ok {
		return ErrStale
	}
	return nil
}

// -- Timing --

func (s *Session) Settle(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// mustQuote renders v as a JSON literal for embedding in a script.
func mustQuote(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Strings and string slices cannot fail to marshal.
		panic(err)
	}
	return string(b)
}
