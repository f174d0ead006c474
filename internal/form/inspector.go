// Package form implements per-field value resolution and the single-pass fill
// orchestration over an application step.
//
// The resolution cascade is: profile-exact match, descriptive generation,
// advisory fallback, safe default. Each tier degrades into the next; the
// resolver never fails, it at worst leaves a field unresolved.
package form

import (
	"strconv"

	"github.com/sherifabdallah/easyapply/internal/dom"
)

// Kind classifies what a field expects.
type Kind string

const (
	KindShortText Kind = "short-text"
	KindLongText  Kind = "long-text"
	KindNumber    Kind = "number"
	KindEmail     Kind = "email"
	KindTel       Kind = "tel"
)

// Constraints carries the field's declared numeric and length bounds. A nil
// pointer means the bound was not declared, which is distinct from zero.
type Constraints struct {
	Min       *float64
	Max       *float64
	MinLength *int
	MaxLength *int
	Step      string
}

// DecimalStep reports whether the declared step admits fractional values.
func (c Constraints) DecimalStep() bool {
	for i := 0; i < len(c.Step); i++ {
		if c.Step[i] == '.' {
			return true
		}
	}
	return false
}

// FieldDescriptor is the semantic view of one fillable control, derived fresh
// per inspection and never persisted.
type FieldDescriptor struct {
	Ref          string
	Label        string
	Kind         Kind
	Constraints  Constraints
	CurrentValue string
}

// Inspect derives a FieldDescriptor from a raw enumerated field. The label is
// read in priority order: accessible name, associated label element,
// placeholder; empty when none is present.
func Inspect(raw dom.RawField) FieldDescriptor {
	label := raw.AriaLabel
	if label == "" {
		label = raw.LabelText
	}
	if label == "" {
		label = raw.Placeholder
	}

	return FieldDescriptor{
		Ref:   raw.Ref,
		Label: label,
		Kind:  kindOf(raw),
		Constraints: Constraints{
			Min:       parseFloatAttr(raw.Min),
			Max:       parseFloatAttr(raw.Max),
			MinLength: parseIntAttr(raw.MinLength),
			MaxLength: parseIntAttr(raw.MaxLength),
			Step:      raw.Step,
		},
		CurrentValue: raw.Value,
	}
}

func kindOf(raw dom.RawField) Kind {
	if raw.Tag == "textarea" {
		return KindLongText
	}
	switch raw.Type {
	case "number":
		return KindNumber
	case "email":
		return KindEmail
	case "tel":
		return KindTel
	default:
		return KindShortText
	}
}

func parseFloatAttr(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseIntAttr(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
