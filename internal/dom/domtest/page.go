// Package domtest provides an in-memory dom.Page for exercising the
// application core without a browser.
package domtest

import (
	"context"
	"strings"
	"time"

	"github.com/sherifabdallah/easyapply/internal/dom"
)

// Click records one ref-addressed click.
type Click struct {
	Ref string
}

// FakePage is a scripted dom.Page. Tests seed the exported state fields and
// inspect the recorded mutations afterwards. Hooks run after the recording so
// a test can advance the page to its next state mid-flow.
type FakePage struct {
	URL        string
	Text       string
	Fields     []dom.RawField
	Groups     []dom.RawChoiceGroup
	Buttons    []dom.RawButton
	Errors     []dom.RawValidationError
	ModalOpen  bool
	ModalFound bool

	// Texts maps a selector to the text TextFirst returns for it.
	Texts map[string]string
	// Counts maps a selector to the element count Count returns for it.
	Counts map[string]int

	// StaleRefs holds refs whose next N mutations fail with ErrStale.
	StaleRefs map[string]int

	// OnClickRef, when set, runs after each successful ClickRef.
	OnClickRef func(ref string)

	SetValues   map[string]string
	Clicked     []Click
	Selected    map[string]int
	Attached    map[string]string
	Navigations []string
	TypedKeys   map[string]string
}

var _ dom.Page = (*FakePage)(nil)

// New returns an empty FakePage with all recording maps initialized.
func New() *FakePage {
	return &FakePage{
		Texts:     map[string]string{},
		Counts:    map[string]int{},
		StaleRefs: map[string]int{},
		SetValues: map[string]string{},
		Selected:  map[string]int{},
		Attached:  map[string]string{},
		TypedKeys: map[string]string{},
	}
}

func (p *FakePage) Navigate(_ context.Context, url string) error {
	p.Navigations = append(p.Navigations, url)
	p.URL = url
	return nil
}

func (p *FakePage) Location(context.Context) string { return p.URL }

func (p *FakePage) FullText(context.Context) (string, bool) {
	return p.Text, p.Text != ""
}

func (p *FakePage) TextFirst(_ context.Context, selectors ...string) (string, bool) {
	for _, sel := range selectors {
		if text, ok := p.Texts[sel]; ok {
			return text, true
		}
	}
	return "", false
}

func (p *FakePage) ClickSelector(_ context.Context, selector string) error {
	if _, ok := p.Texts[selector]; !ok && p.Counts[selector] == 0 {
		return dom.ErrNotFound
	}
	p.Clicked = append(p.Clicked, Click{Ref: selector})
	return nil
}

func (p *FakePage) TypeSelector(_ context.Context, selector, text string) error {
	p.TypedKeys[selector] = text
	return nil
}

func (p *FakePage) PressEnter(_ context.Context, selector string) error {
	p.Clicked = append(p.Clicked, Click{Ref: selector + ":enter"})
	return nil
}

func (p *FakePage) Count(_ context.Context, selector string) int {
	return p.Counts[selector]
}

func (p *FakePage) ClickNth(_ context.Context, selector string, index int) error {
	if index >= p.Counts[selector] {
		return dom.ErrNotFound
	}
	p.Clicked = append(p.Clicked, Click{Ref: selector})
	return nil
}

func (p *FakePage) CollectFields(context.Context) ([]dom.RawField, error) {
	return append([]dom.RawField(nil), p.Fields...), nil
}

func (p *FakePage) CollectChoiceGroups(context.Context) ([]dom.RawChoiceGroup, error) {
	return append([]dom.RawChoiceGroup(nil), p.Groups...), nil
}

func (p *FakePage) CollectButtons(context.Context) ([]dom.RawButton, error) {
	return append([]dom.RawButton(nil), p.Buttons...), nil
}

func (p *FakePage) CollectValidationErrors(context.Context) ([]dom.RawValidationError, error) {
	return append([]dom.RawValidationError(nil), p.Errors...), nil
}

func (p *FakePage) ModalVisible(context.Context) (bool, bool) {
	return p.ModalOpen, p.ModalFound
}

func (p *FakePage) SetValueRef(_ context.Context, ref, value string) error {
	if err := p.checkStale(ref); err != nil {
		return err
	}
	p.SetValues[ref] = value
	for i := range p.Fields {
		if p.Fields[i].Ref == ref {
			p.Fields[i].Value = value
		}
	}
	return nil
}

func (p *FakePage) ClickRef(_ context.Context, ref string) error {
	if err := p.checkStale(ref); err != nil {
		return err
	}
	p.Clicked = append(p.Clicked, Click{Ref: ref})
	if p.OnClickRef != nil {
		p.OnClickRef(ref)
	}
	return nil
}

func (p *FakePage) SelectOptionRef(_ context.Context, ref string, index int) error {
	if err := p.checkStale(ref); err != nil {
		return err
	}
	p.Selected[ref] = index
	return nil
}

func (p *FakePage) AttachFileRef(_ context.Context, ref, path string) error {
	if err := p.checkStale(ref); err != nil {
		return err
	}
	p.Attached[ref] = path
	return nil
}

func (p *FakePage) ScrollIntoViewRef(_ context.Context, ref string) error {
	return p.checkStale(ref)
}

func (p *FakePage) Settle(context.Context, time.Duration) {}

// LastClicked returns the ref of the most recent click, or "".
func (p *FakePage) LastClicked() string {
	if len(p.Clicked) == 0 {
		return ""
	}
	return p.Clicked[len(p.Clicked)-1].Ref
}

// ClickedRef reports whether ref was clicked at any point.
func (p *FakePage) ClickedRef(ref string) bool {
	for _, c := range p.Clicked {
		if c.Ref == ref {
			return true
		}
	}
	return false
}

// ButtonByText returns the first seeded button whose text contains sub,
// case-insensitively.
func (p *FakePage) ButtonByText(sub string) (dom.RawButton, bool) {
	for _, b := range p.Buttons {
		if strings.Contains(strings.ToLower(b.Text), strings.ToLower(sub)) {
			return b, true
		}
	}
	return dom.RawButton{}, false
}

func (p *FakePage) checkStale(ref string) error {
	if n, ok := p.StaleRefs[ref]; ok && n > 0 {
		p.StaleRefs[ref] = n - 1
		return dom.ErrStale
	}
	return nil
}
