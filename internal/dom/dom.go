// Package dom is the capability boundary over the rendered document.
//
// The application core never touches the automation backend directly; it
// works against the Page interface. Reads return "not found" instead of
// failing, and a mutation against an element the renderer has since replaced
// reports ErrStale so the caller can re-enumerate. One Page is exclusively
// owned by one application flow at a time.
package dom

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports that no element matched.
	ErrNotFound = errors.New("dom: element not found")
	// ErrStale reports that a previously collected element handle no longer
	// resolves; the document re-rendered between lookup and use.
	ErrStale = errors.New("dom: element reference is stale")
)

// RawField is a fillable control as enumerated from the live document.
// Attribute values are verbatim; an absent constraint is an empty string,
// which downstream means "unconstrained", not zero.
type RawField struct {
	Ref         string `json:"ref"`
	Tag         string `json:"tag"`
	Type        string `json:"type"`
	AriaLabel   string `json:"ariaLabel"`
	LabelText   string `json:"labelText"`
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
	Min         string `json:"min"`
	Max         string `json:"max"`
	MinLength   string `json:"minLength"`
	MaxLength   string `json:"maxLength"`
	Step        string `json:"step"`
}

// RawOption is one selectable option within a choice group. Ref is empty for
// native select options, which are addressed by index through the parent.
type RawOption struct {
	Ref      string `json:"ref"`
	Index    int    `json:"index"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
}

// Choice group kinds.
const (
	GroupFieldset = "fieldset"
	GroupSelect   = "select"
)

// RawChoiceGroup is a radio/checkbox fieldset or a select element.
type RawChoiceGroup struct {
	Ref      string      `json:"ref"`
	Kind     string      `json:"kind"`
	Question string      `json:"question"`
	Options  []RawOption `json:"options"`
}

// RawButton is a button as enumerated from the live document.
type RawButton struct {
	Ref       string `json:"ref"`
	Text      string `json:"text"`
	AriaLabel string `json:"ariaLabel"`
	Disabled  bool   `json:"disabled"`
	Visible   bool   `json:"visible"`
	InModal   bool   `json:"inModal"`
}

// RawValidationError is a validation message the form itself reported, with
// the refs of the inputs in its containing group.
type RawValidationError struct {
	Text      string   `json:"text"`
	FieldRefs []string `json:"fieldRefs"`
}

// Page exposes the document operations the core consumes. All operations are
// best effort against an asynchronously re-rendering document.
type Page interface {
	// Navigation and generic reads.
	Navigate(ctx context.Context, url string) error
	Location(ctx context.Context) string
	FullText(ctx context.Context) (string, bool)
	TextFirst(ctx context.Context, selectors ...string) (string, bool)

	// Selector-addressed interaction for the outer loop (login, job cards).
	ClickSelector(ctx context.Context, selector string) error
	TypeSelector(ctx context.Context, selector, text string) error
	PressEnter(ctx context.Context, selector string) error
	Count(ctx context.Context, selector string) int
	ClickNth(ctx context.Context, selector string, index int) error

	// Structured enumeration; each call is one round trip and re-tags the
	// elements it returns, so refs are valid until the next re-render.
	CollectFields(ctx context.Context) ([]RawField, error)
	CollectChoiceGroups(ctx context.Context) ([]RawChoiceGroup, error)
	CollectButtons(ctx context.Context) ([]RawButton, error)
	CollectValidationErrors(ctx context.Context) ([]RawValidationError, error)
	ModalVisible(ctx context.Context) (visible bool, found bool)

	// Ref-addressed mutations. ErrStale when the ref no longer resolves.
	SetValueRef(ctx context.Context, ref, value string) error
	ClickRef(ctx context.Context, ref string) error
	SelectOptionRef(ctx context.Context, ref string, index int) error
	AttachFileRef(ctx context.Context, ref, path string) error
	ScrollIntoViewRef(ctx context.Context, ref string) error

	// Settle blocks for d to let the renderer catch up after a mutation.
	Settle(ctx context.Context, d time.Duration)
}
